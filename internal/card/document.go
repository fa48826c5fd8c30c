package card

// Adaptive Card schema identifiers emitted on every document.
const (
	SchemaURL    = "http://adaptivecards.io/schemas/adaptive-card.json"
	DocumentType = "AdaptiveCard"
	Version      = "1.0"
)

// Element is a node that can appear in a card body or a container's items.
type Element interface {
	elementType() string
}

// Document is the root Adaptive Card payload handed to the renderer.
type Document struct {
	Schema  string    `json:"$schema" validate:"required,url"`
	Type    string    `json:"type" validate:"eq=AdaptiveCard"`
	Version string    `json:"version" validate:"required"`
	Speak   string    `json:"speak,omitempty"`
	Body    []Element `json:"body" validate:"min=1"`
}

type Container struct {
	Type    string    `json:"type" validate:"eq=Container"`
	Spacing string    `json:"spacing,omitempty" validate:"omitempty,oneof=None Small Default Medium Large ExtraLarge Padding"`
	Items   []Element `json:"items" validate:"min=1"`
}

type TextBlock struct {
	Type     string `json:"type" validate:"eq=TextBlock"`
	Text     string `json:"text" validate:"required"`
	Size     string `json:"size,omitempty" validate:"omitempty,oneof=Small Default Medium Large ExtraLarge"`
	Color    string `json:"color,omitempty" validate:"omitempty,oneof=Default Dark Light Accent Good Warning Attention"`
	IsSubtle bool   `json:"isSubtle,omitempty"`
	Spacing  string `json:"spacing,omitempty" validate:"omitempty,oneof=None Small Default Medium Large ExtraLarge Padding"`
}

type ColumnSet struct {
	Type    string   `json:"type" validate:"eq=ColumnSet"`
	Columns []Column `json:"columns" validate:"min=1"`
}

type Column struct {
	Type  string    `json:"type" validate:"eq=Column"`
	Width string    `json:"width" validate:"required"`
	Items []Element `json:"items" validate:"min=1"`
}

type FactSet struct {
	Type  string `json:"type" validate:"eq=FactSet"`
	Facts []Fact `json:"facts" validate:"min=1"`
}

type Fact struct {
	Title string `json:"title" validate:"required"`
	Value string `json:"value" validate:"required"`
}

func (Container) elementType() string { return "Container" }
func (TextBlock) elementType() string { return "TextBlock" }
func (ColumnSet) elementType() string { return "ColumnSet" }
func (FactSet) elementType() string   { return "FactSet" }

// HostConfig carries renderer settings that live outside the card payload.
type HostConfig struct {
	FontFamily string `json:"fontFamily"`
}
