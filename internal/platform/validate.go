package platform

import (
	"github.com/go-playground/validator/v10"
)

// validate is the shared validator for service inputs. Client-side checks run
// before any network call; a rejected input never hits the wire.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct tag validation and converts failures into the
// portal's validation error shape.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return NewValidationError(err.Error())
	}

	fields := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{
			Loc:  []any{"body", fe.Field()},
			Msg:  "failed validation: " + fe.Tag(),
			Type: fe.Tag(),
		}
	}

	e := NewValidationError(FlattenFields(fields))
	e.Fields = fields
	return e
}
