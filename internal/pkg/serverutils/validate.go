package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest checks a DTO's validate tags and converts the first
// failure into a client-facing 400.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return NewAppError(
			fiber.StatusBadRequest,
			ErrKindBadRequest,
			fmt.Sprintf("field '%s' failed on '%s' validation", fe.Field(), fe.Tag()),
		)
	}

	return NewAppError(fiber.StatusBadRequest, ErrKindBadRequest, "invalid request body")
}
