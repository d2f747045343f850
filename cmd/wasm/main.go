//go:build js && wasm
// +build js,wasm

package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/MeKo-Tech/topollock/internal/pipeline"
	"github.com/MeKo-Tech/topollock/internal/sketch"
)

// RenderRequest is the JSON argument of topollockRender.
type RenderRequest struct {
	Recipe  string `json:"recipe"`
	Palette string `json:"palette"`
	Seed    int64  `json:"seed"`
	Grid    int    `json:"grid"`
}

// render draws a sketch in the browser and returns it as a PNG data URL.
// The image recipe needs a file on disk and is not available here.
func render(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "missing arguments"}
	}

	var req RenderRequest
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		return map[string]interface{}{"error": fmt.Sprintf("failed to parse request: %v", err)}
	}
	if req.Recipe == "image" {
		return map[string]interface{}{"error": "the image recipe is not available in the browser"}
	}

	opts := sketch.DefaultOptions()
	if req.Recipe != "" {
		opts.Recipe = req.Recipe
	}
	opts.Palette = req.Palette
	opts.Grid = req.Grid

	gen, err := pipeline.NewGenerator(opts, "", nil, pipeline.GeneratorOptions{})
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}
	res, err := gen.Render(context.Background(), "", req.Seed)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	var buf bytes.Buffer
	if err := gen.Encode(&buf, res.Image); err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	return map[string]interface{}{
		"recipe":  res.Recipe,
		"seed":    fmt.Sprint(res.Seed),
		"dataURL": "data:" + gen.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}
}

func recipes(this js.Value, args []js.Value) interface{} {
	names := sketch.Names()
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

func main() {
	c := make(chan struct{})

	js.Global().Set("topollockRender", js.FuncOf(render))
	js.Global().Set("topollockRecipes", js.FuncOf(recipes))

	fmt.Println("Topollock WASM module loaded")
	<-c
}
