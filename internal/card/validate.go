package card

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrRender matches every RenderError.
var ErrRender = errors.New("card rejected by renderer")

// RenderError reports a document that does not conform to the card schema.
// For documents built by Compile this indicates a defect in the compiler.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("card rejected at %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRender }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks doc against the subset of the Adaptive Card schema this package emits.
func Validate(doc Document) error {
	if err := validate.Struct(doc); err != nil {
		return &RenderError{Path: "$", Err: err}
	}
	return validateElements("$.body", doc.Body)
}

func validateElements(path string, items []Element) error {
	for i, el := range items {
		if err := validateElement(fmt.Sprintf("%s[%d]", path, i), el); err != nil {
			return err
		}
	}
	return nil
}

func validateElement(path string, el Element) error {
	if el == nil {
		return &RenderError{Path: path, Err: errors.New("nil element")}
	}
	if err := validate.Struct(el); err != nil {
		return &RenderError{Path: path, Err: err}
	}

	switch n := el.(type) {
	case Container:
		return validateElements(path+".items", n.Items)
	case ColumnSet:
		for i, col := range n.Columns {
			cpath := fmt.Sprintf("%s.columns[%d]", path, i)
			if err := validate.Struct(col); err != nil {
				return &RenderError{Path: cpath, Err: err}
			}
			if err := validateElements(cpath+".items", col.Items); err != nil {
				return err
			}
		}
	case FactSet:
		for i, f := range n.Facts {
			if err := validate.Struct(f); err != nil {
				return &RenderError{Path: fmt.Sprintf("%s.facts[%d]", path, i), Err: err}
			}
		}
	case TextBlock:
	default:
		return &RenderError{Path: path, Err: fmt.Errorf("unsupported element %s", el.elementType())}
	}
	return nil
}
