package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aleister1102/httpeek/internal/classifier"
	"github.com/aleister1102/httpeek/internal/httpclient"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()
	registerRules(validate)

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("configuration validation error: %w", err)
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		fieldName := strings.TrimPrefix(e.StructNamespace(), "GlobalConfig.")
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(messages, "\n  "))
}

func registerRules(validate *validator.Validate) {
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("httpmethod", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(fl.Field().String()) {
		case "", "GET", "HEAD":
			return true
		default:
			return false
		}
	})

	// Unparseable terms are skipped at filter time; the rule only rejects
	// filters where nothing at all is usable.
	_ = validate.RegisterValidation("statusfilter", func(fl validator.FieldLevel) bool {
		expr := fl.Field().String()
		if classifier.IsAllStatus(expr) {
			return true
		}
		return len(classifier.ParseStatusFilter(expr)) > 0
	})

	_ = validate.RegisterValidation("lengthfilter", func(fl validator.FieldLevel) bool {
		_, err := classifier.ParseLengthRange(fl.Field().String())
		return err == nil
	})

	_ = validate.RegisterValidation("proxyurl", func(fl validator.FieldLevel) bool {
		if fl.Field().String() == "" {
			return true
		}
		_, err := httpclient.ParseProxy(fl.Field().String())
		return err == nil
	})

	_ = validate.RegisterValidation("presentation", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", PresentationLive, PresentationFinal, PresentationSilent:
			return true
		default:
			return false
		}
	})
}
