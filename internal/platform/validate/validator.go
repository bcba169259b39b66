// Package validate plugs go-playground/validator into echo's c.Validate.
package validate

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterValidation("openmrs_uuid", validateOpenMRSUUID)
	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// validateOpenMRSUUID accepts the 36 character identifiers OpenMRS assigns,
// including dashed UUIDs.
func validateOpenMRSUUID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
