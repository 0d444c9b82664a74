package api

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type filterRequest struct {
	Checked []string  `json:"checked"`
	Radio   []float64 `json:"radio"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type createCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"required"`
	Address  string `json:"address" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Answer      string `json:"answer" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type profileRequest struct {
	Name     string `json:"name"`
	Password string `json:"password" binding:"omitempty,min=6"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type checkoutRequest struct {
	Nonce string   `json:"nonce" binding:"required"`
	Cart  []string `json:"cart" binding:"required,min=1"`
}

// formatValidationError turns binding failures into an exhaustive
// field -> message report rather than a first-failure-only string.
func formatValidationError(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"body": err.Error()}
	}

	errors := make(map[string]string, len(verrs))
	for _, verr := range verrs {
		field := strings.ToLower(verr.Field())
		switch verr.Tag() {
		case "required":
			errors[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errors[field] = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			errors[field] = fmt.Sprintf("%s must be at least %s characters", field, verr.Param())
		default:
			errors[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return errors
}
