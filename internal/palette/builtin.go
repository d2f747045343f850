package palette

type builtin struct {
	name       string
	colors     []string
	stroke     string
	background string
}

var builtins = []builtin{
	{"empusa", []string{"#c92a28", "#e69301", "#1f8793", "#13652b", "#e7d8b0", "#48233b", "#e3b3ac"}, "#1a1a1a", "#f0f0e4"},
	{"delphi", []string{"#475b62", "#7a999c", "#2a1f1d", "#fbaf3c", "#df4a33", "#f0e0c6", "#af592c"}, "#2a1f1d", "#f0e0c6"},
	{"jupiter", []string{"#c03a53", "#edd09e", "#aab5af", "#023629", "#eba735", "#8e9380", "#6c4127"}, "#12110f", "#e6e2d6"},
	{"hermes", []string{"#253852", "#51222f", "#b53435", "#ecbb51"}, "#0e0e0e", "#eeccc2"},
	{"tsu_arcade", []string{"#4aad8b", "#e15147", "#f3b551", "#cec8b8", "#d1af84", "#544e47"}, "#251c12", "#cfc7b9"},
	{"cc239", []string{"#e3dd34", "#78496b", "#f0527f", "#a7e0e2"}, "", "#e0eff0"},
	{"retro", []string{"#69766f", "#9ed6cb", "#f7e5cc", "#9d8f7f", "#936454", "#bf5c32", "#efad57"}, "", ""},
	{"tundra", []string{"#87c3ca", "#7b7377", "#b2475d", "#7d3e3e", "#eb7f64", "#d9c67a", "#f3f2f2"}, "", ""},
	{"mono", []string{"#ffc70b"}, "#000000", "#ffffff"},
}

func init() {
	for _, b := range builtins {
		p := Palette{Name: b.name}
		for _, h := range b.colors {
			p.Colors = append(p.Colors, mustHex(h))
		}
		if b.stroke != "" {
			c := mustHex(b.stroke)
			p.Stroke = &c
		}
		if b.background != "" {
			c := mustHex(b.background)
			p.Background = &c
		}
		Register(p)
	}
}
