package quote

// Details is the normalized latest quote for a single symbol.
// Values are created once per fetch and never mutated.
type Details struct {
	Symbol     string `json:"symbol"`
	TradingDay string `json:"trading_day"`

	Price float64 `json:"price"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`

	// Change is the absolute price delta; ChangePercent is already a percentage (not a fraction).
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// Down reports whether the quote moved down. A zero change counts as up.
func (d Details) Down() bool { return d.ChangePercent < 0 }
