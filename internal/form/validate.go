package form

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator registers qrcolor: a hex color or "transparent".
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("qrcolor", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == Transparent || hexColor.MatchString(s)
	})
	return v
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks the state before it is submitted. The server validates
// again; this only catches what the form itself can know is wrong.
func (s State) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid form: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	if s.ColorMask.IsGradient() && s.GradientColor == "" {
		return fmt.Errorf("invalid form: %s needs a second color", s.ColorMask)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "qrcolor":
		return fmt.Sprintf("%s must be a hex color or transparent, got %v", fe.Field(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "min", "max":
		return fmt.Sprintf("%s out of range (%s %s)", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
