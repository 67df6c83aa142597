// Package dto defines data transfer objects for the bazi feature's HTTP transport layer.
package dto

import (
	"github.com/go-playground/validator/v10"

	"bazi_backend/internal/feature/bazi/domain/entity"
)

// ProfileRequest represents the request body for the /bazi endpoint.
// birth_time must be "YYYY-MM-DD HH:MM"; gender must be 男 or 女.
type ProfileRequest struct {
	BirthTime string `json:"birth_time" binding:"required,birthtime"`
	Gender    string `json:"gender" binding:"required,oneof=男 女"`
}

// RegisterValidators registers the custom "birthtime" rule on v.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("birthtime", func(fl validator.FieldLevel) bool {
		_, err := entity.ParseBirthTime(fl.Field().String())
		return err == nil
	})
}
