package card

import (
	"fmt"

	"github.com/shopspring/decimal"
	"stockcard/internal/quote"
)

// Compile builds the quote card for q. It is pure: equal inputs give equal documents.
// q must come from quote.Normalize; non-finite values are not handled here.
func Compile(q quote.Details, s Style) Document {
	s = s.withDefaults()

	glyph, color, direction := s.UpGlyph, s.PositiveColor, "up"
	if q.Down() {
		glyph, color, direction = s.DownGlyph, s.NegativeColor, "down"
	}

	price := fixed2(q.Price)
	changeText := fmt.Sprintf("%s %s (%s%% )", glyph, fixed2(q.Change), fixed2(q.ChangePercent))

	return Document{
		Schema:  SchemaURL,
		Type:    DocumentType,
		Version: Version,
		Speak: fmt.Sprintf("%s stock is trading at %s a share, which is %s %s%%",
			q.Symbol, price, direction, decimal.NewFromFloat(q.ChangePercent).Abs().StringFixed(2)),
		Body: []Element{
			Container{
				Type: "Container",
				Items: []Element{
					TextBlock{Type: "TextBlock", Text: q.Symbol, Size: "Medium", IsSubtle: true},
					TextBlock{Type: "TextBlock", Text: q.TradingDay, IsSubtle: true},
				},
			},
			Container{
				Type:    "Container",
				Spacing: "None",
				Items: []Element{
					ColumnSet{
						Type: "ColumnSet",
						Columns: []Column{
							{
								Type:  "Column",
								Width: "stretch",
								Items: []Element{
									TextBlock{Type: "TextBlock", Text: price, Size: "ExtraLarge"},
									TextBlock{Type: "TextBlock", Text: changeText, Size: "Small", Color: color, Spacing: "None"},
								},
							},
							{
								Type:  "Column",
								Width: "auto",
								Items: []Element{
									FactSet{
										Type: "FactSet",
										Facts: []Fact{
											{Title: "Open", Value: fixed2(q.Open)},
											{Title: "High", Value: fixed2(q.High)},
											{Title: "Low", Value: fixed2(q.Low)},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

// fixed2 renders v with exactly two decimals, rounding half away from zero.
// A negative value that rounds to zero keeps its sign so it agrees with the glyph.
func fixed2(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	if v < 0 && s == "0.00" {
		return "-0.00"
	}
	return s
}
