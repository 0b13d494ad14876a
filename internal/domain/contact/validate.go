package contact

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	namePattern = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)
	nonDigits   = regexp.MustCompile(`\D`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	must(v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("minwords", func(fl validator.FieldLevel) bool {
		want := 1
		if _, err := fmt.Sscanf(fl.Param(), "%d", &want); err != nil {
			return false
		}
		return len(strings.Fields(fl.Field().String())) >= want
	}))
	must(v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		digits := nonDigits.ReplaceAllString(fl.Field().String(), "")
		return len(digits) >= 10 && len(digits) <= 15
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// normalize trims every field and collapses whitespace inside the name.
func normalize(s Submission) Submission {
	s.Name = strings.Join(strings.Fields(s.Name), " ")
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.Subject = strings.TrimSpace(s.Subject)
	s.Message = strings.TrimSpace(s.Message)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Company = strings.TrimSpace(s.Company)
	return s
}

func (s *Service) validate(sub Submission) error {
	err := s.validator.Struct(sub)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "personname":
		return "can only contain letters, spaces, hyphens, apostrophes, and periods"
	case "minwords":
		return fmt.Sprintf("must contain at least %s words", fe.Param())
	case "phone":
		return "must be between 10-15 digits"
	}
	return "is invalid"
}
