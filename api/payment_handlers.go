package api

import (
	"github.com/example/storefront/pkg/auth"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Server) paymentToken(c *gin.Context) {
	token, err := s.gateway.ClientToken(c.Request.Context())
	if err != nil {
		s.respondError(c, "Error while generating payment token", err)
		return
	}

	respondOK(c, "Payment token", gin.H{"clientToken": token})
}

// checkout charges the gateway and records the order with its initial
// "Not Process" status.
func (s *Server) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid checkout request", formatValidationError(err))
		return
	}

	claims := auth.ClaimsFrom(c)
	buyerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		s.respondError(c, "Invalid user token", err)
		return
	}

	total, err := s.orders.PriceCart(c.Request.Context(), req.Cart)
	if err != nil {
		s.respondError(c, "Error while pricing cart", err)
		return
	}

	result, err := s.gateway.Charge(c.Request.Context(), req.Nonce, total)
	if err != nil {
		s.respondError(c, "Payment failed", err)
		return
	}

	order, err := s.orders.Create(c.Request.Context(), buyerID, req.Cart, result)
	if err != nil {
		s.respondError(c, "Error while creating order", err)
		return
	}

	respondCreated(c, "Payment completed successfully", gin.H{"order": order})
}
