package api

import (
	"errors"
	"net/http"

	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/order"
	"github.com/example/storefront/pkg/payment"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// envelope builds the uniform {success, message, ...} response body.
func envelope(success bool, message string, payload gin.H) gin.H {
	body := gin.H{"success": success, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	return body
}

func respondOK(c *gin.Context, message string, payload gin.H) {
	c.JSON(http.StatusOK, envelope(true, message, payload))
}

func respondCreated(c *gin.Context, message string, payload gin.H) {
	c.JSON(http.StatusCreated, envelope(true, message, payload))
}

func respondValidation(c *gin.Context, message string, fieldErrors map[string]string) {
	payload := gin.H{}
	if len(fieldErrors) > 0 {
		payload["errors"] = fieldErrors
	}
	c.JSON(http.StatusBadRequest, envelope(false, message, payload))
}

// respondError maps service errors onto one consistent status scheme:
// 400 bad input, 401/403 auth, 404 missing, 409 conflict, 500 the rest.
func (s *Server) respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicateCategory),
		errors.Is(err, repository.ErrDuplicateEmail),
		errors.Is(err, auth.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, catalog.ErrInvalidID),
		errors.Is(err, order.ErrInvalidID),
		errors.Is(err, order.ErrUnknownStatus),
		errors.Is(err, order.ErrIllegalTransition),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, payment.ErrEmptyNonce),
		errors.Is(err, auth.ErrWrongAnswer):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(message,
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}

	c.JSON(status, envelope(false, message, gin.H{"error": err.Error()}))
}
