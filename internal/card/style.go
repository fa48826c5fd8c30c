package card

// Style holds the presentation constants used when compiling a card.
type Style struct {
	FontFamily    string `json:"font_family" mapstructure:"font_family"`
	PositiveColor string `json:"positive_color" mapstructure:"positive_color" validate:"omitempty,oneof=Default Dark Light Accent Good Warning Attention"`
	NegativeColor string `json:"negative_color" mapstructure:"negative_color" validate:"omitempty,oneof=Default Dark Light Accent Good Warning Attention"`
	UpGlyph       string `json:"up_glyph" mapstructure:"up_glyph"`
	DownGlyph     string `json:"down_glyph" mapstructure:"down_glyph"`
}

func DefaultStyle() Style {
	return Style{
		FontFamily:    "Segoe UI, Helvetica Neue, sans-serif",
		PositiveColor: "Good",
		NegativeColor: "Attention",
		UpGlyph:       "▲",
		DownGlyph:     "▼",
	}
}

// withDefaults fills blank fields from DefaultStyle.
func (s Style) withDefaults() Style {
	d := DefaultStyle()
	if s.FontFamily == "" {
		s.FontFamily = d.FontFamily
	}
	if s.PositiveColor == "" {
		s.PositiveColor = d.PositiveColor
	}
	if s.NegativeColor == "" {
		s.NegativeColor = d.NegativeColor
	}
	if s.UpGlyph == "" {
		s.UpGlyph = d.UpGlyph
	}
	if s.DownGlyph == "" {
		s.DownGlyph = d.DownGlyph
	}
	return s
}

// HostConfigFor returns the renderer host config matching s.
func HostConfigFor(s Style) HostConfig {
	return HostConfig{FontFamily: s.withDefaults().FontFamily}
}
