package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	passwordRuleTag  = "complexpw"
	passwordBytesTag = "pwbytes"

	// bcrypt rejects longer inputs
	maxPasswordBytes = 72
)

var registerOnce sync.Once

// registerValidators plugs custom rules into gin's validator engine.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonTagName)
		_ = v.RegisterValidation(passwordRuleTag, passwordComplexity)
		_ = v.RegisterValidation(passwordBytesTag, passwordByteLength)
	})
}

// jsonTagName reports fields by their JSON name in validation errors.
func jsonTagName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}

// passwordComplexity requires at least one ASCII letter and one ASCII digit.
func passwordComplexity(fl validator.FieldLevel) bool {
	var letter, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		}
		if letter && digit {
			return true
		}
	}
	return false
}

// passwordByteLength caps the encoded size; max= counts runes, not bytes.
func passwordByteLength(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= maxPasswordBytes
}

// bindErrorMessage turns a binding failure into a single client-facing line.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fe.Field() + " " + validationMessage(fe.Tag(), fe.Param())
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "invalid JSON body"
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String())
	}

	return "invalid request body"
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	case passwordBytesTag:
		return fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)
	case passwordRuleTag:
		return "must contain at least one letter and one digit"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
