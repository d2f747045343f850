// Package archive stores rendered sketches in a single SQLite database.
package archive

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a recipe/seed pair is not in the archive.
var ErrNotFound = errors.New("sketch not found")

// Metadata describes an archive as a whole.
type Metadata struct {
	Name        string // Human-readable archive name
	Description string
	Version     string
	Palette     string   // Palette override used for the batch, if any
	Recipes     []string // Recipes rendered into the archive
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	if m.Palette != "" {
		result["palette"] = m.Palette
	}
	if len(m.Recipes) > 0 {
		result["recipes"] = strings.Join(m.Recipes, ",")
	}

	return result
}

func metadataFromMap(values map[string]string) Metadata {
	meta := Metadata{
		Name:        values["name"],
		Description: values["description"],
		Version:     values["version"],
		Palette:     values["palette"],
	}
	if v := values["recipes"]; v != "" {
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				meta.Recipes = append(meta.Recipes, r)
			}
		}
	}
	return meta
}

// Entry is a single stored sketch.
type Entry struct {
	Data   []byte // Encoded image (gzip-compressed before storage)
	Recipe string
	Format string // png or jpeg
	Seed   int64
}

func (e Entry) key() string {
	return fmt.Sprintf("%s/%d", e.Recipe, e.Seed)
}
