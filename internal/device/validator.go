package device

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var expoTokenPattern = regexp.MustCompile(`^Expo(nent)?PushToken\[.+\]$`)

// ValidationError lists every invalid field of a Preference.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid device preference: " + strings.Join(e.Messages, ", ")
}

// Validator checks preferences before they are stored.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator creates a Validator with English messages.
func NewValidator() (*Validator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("expo_token", isExpoPushToken); err != nil {
		return nil, fmt.Errorf("failed to register expo_token validation: %w", err)
	}
	if err := validate.RegisterTranslation("expo_token", trans, func(ut ut.Translator) error {
		return ut.Add("expo_token", "{0} must be an Expo push token such as ExponentPushToken[...]", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("expo_token", fe.Field())
		return t
	}); err != nil {
		return nil, fmt.Errorf("failed to register expo_token translation: %w", err)
	}

	return &Validator{validate: validate, translator: trans}, nil
}

// Validate returns a *ValidationError when p has invalid fields.
func (v *Validator) Validate(p Preference) error {
	err := v.validate.Struct(p)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate.Struct() > %w", err)
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, e.Translate(v.translator))
	}
	return &ValidationError{Messages: messages}
}

func isExpoPushToken(fl validator.FieldLevel) bool {
	return expoTokenPattern.MatchString(fl.Field().String())
}
