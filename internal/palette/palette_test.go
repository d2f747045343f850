package palette

import (
	"errors"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#ffc70b", color.NRGBA{R: 0xff, G: 0xc7, B: 0x0b, A: 0xff}, false},
		{"fff", color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, false},
		{"#00000080", color.NRGBA{A: 0x80}, false},
		{"#12345", color.NRGBA{}, true},
		{"#zzzzzz", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuiltinsRegistered(t *testing.T) {
	names := Names()
	for _, n := range []string{"empusa", "delphi", "jupiter"} {
		assert.Contains(t, names, n)
	}
	assert.IsIncreasing(t, names)

	_, err := Get("no-such-palette")
	assert.True(t, errors.Is(err, ErrUnknownPalette))
}

func TestColorAtSpreadsEvenly(t *testing.T) {
	p := Palette{Colors: []color.NRGBA{{R: 0}, {R: 1}, {R: 2}}}
	var got []uint8
	for i := 0; i < 6; i++ {
		got = append(got, p.ColorAt(i, 6).(color.NRGBA).R)
	}
	assert.Equal(t, []uint8{0, 0, 1, 1, 2, 2}, got)
	assert.Equal(t, color.NRGBA{R: 2}, p.ColorAt(99, 6))
	assert.Equal(t, color.NRGBA{R: 1}, p.Index(4))
	assert.Equal(t, color.NRGBA{R: 2}, p.Index(-1))
}

func TestDefaultsAndShuffle(t *testing.T) {
	p := Palette{Name: "x", Colors: []color.NRGBA{{R: 1}, {R: 2}, {R: 3}, {R: 4}, {R: 5}}}
	assert.Equal(t, DefaultStroke, p.StrokeColor())
	assert.Equal(t, DefaultBackground, p.BackgroundColor())

	s1 := p.Shuffled(rand.New(rand.NewSource(1)))
	s2 := p.Shuffled(rand.New(rand.NewSource(1)))
	assert.Equal(t, s1.Colors, s2.Colors)
	assert.ElementsMatch(t, p.Colors, s1.Colors)
	assert.Equal(t, uint8(1), p.Colors[0].R, "original untouched")
}

func TestFromConfig(t *testing.T) {
	p, err := FromConfig("custom", Config{Colors: []string{"#ff0000", "#00ff00"}, Background: "#000"})
	require.NoError(t, err)
	assert.Len(t, p.Colors, 2)
	assert.Equal(t, color.NRGBA{A: 255}, p.BackgroundColor())
	assert.Equal(t, DefaultStroke, p.StrokeColor())

	_, err = FromConfig("empty", Config{})
	assert.Error(t, err)
	_, err = FromConfig("bad", Config{Colors: []string{"nope"}})
	assert.Error(t, err)
}
