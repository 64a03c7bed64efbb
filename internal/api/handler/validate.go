package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/Rrens/chatbot-pro/internal/api/response"
	"github.com/go-playground/validator/v10"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
		return hexColor.MatchString(fl.Field().String())
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and validates it, writing a
// 400 response on failure
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			response.BadRequest(w, fieldErrors(validationErrors))
			return false
		}
		response.BadRequest(w, err.Error())
		return false
	}

	return true
}

func fieldErrors(validationErrors validator.ValidationErrors) map[string]string {
	errs := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errs[field] = "field is required"
		case "email":
			errs[field] = "invalid email format"
		case "url":
			errs[field] = "invalid URL"
		case "min":
			errs[field] = "must be at least " + e.Param() + " characters"
		case "max":
			errs[field] = "must be at most " + e.Param() + " characters"
		case "oneof":
			errs[field] = "must be one of: " + e.Param()
		case "hexcolor6":
			errs[field] = "must be a hex color like #3B82F6"
		case "eqfield":
			errs[field] = "does not match " + e.Param()
		case "eq":
			errs[field] = "must be " + e.Param()
		default:
			errs[field] = "validation failed on " + e.Tag()
		}
	}
	return errs
}
