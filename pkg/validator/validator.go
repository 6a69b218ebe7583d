// Package validator wraps go-playground/validator with the custom rules the
// request DTOs rely on: non-nil UUIDs and Indian mobile numbers.
package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrorResponse describes a single failed field for the API error payload.
type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	// uuid_required: the zero UUID is as good as missing
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})

	// indian_mobile: 10 digits, first digit 6-9. Member identity is the phone
	// number, so malformed ones must never reach the users table.
	validate.RegisterValidation("indian_mobile", func(fl validator.FieldLevel) bool {
		phone := fl.Field().String()
		if len(phone) != 10 {
			return false
		}
		if phone[0] < '6' || phone[0] > '9' {
			return false
		}
		for i := 1; i < len(phone); i++ {
			if phone[i] < '0' || phone[i] > '9' {
				return false
			}
		}
		return true
	})
}

// ValidateStruct runs the registered rules over a request DTO and returns one
// entry per failed field, or nil when the struct is valid.
func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}
