package api

import (
	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/models"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid registration request", formatValidationError(err))
		return
	}

	user, err := s.accounts.Register(c.Request.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Answer:   req.Answer,
	})
	if err != nil {
		s.respondError(c, "Error in registration", err)
		return
	}

	respondCreated(c, "User registered successfully", gin.H{"user": user})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid email or password", formatValidationError(err))
		return
	}

	user, token, err := s.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, "Error in login", err)
		return
	}

	respondOK(c, "Login successful", gin.H{
		"user":  user,
		"token": token,
	})
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid reset request", formatValidationError(err))
		return
	}

	if err := s.accounts.ForgotPassword(c.Request.Context(), req.Email, req.Answer, req.NewPassword); err != nil {
		s.respondError(c, "Error in password reset", err)
		return
	}

	respondOK(c, "Password reset successfully", nil)
}

func (s *Server) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid profile request", formatValidationError(err))
		return
	}

	claims := auth.ClaimsFrom(c)
	user, err := s.accounts.UpdateProfile(c.Request.Context(), claims.UserID, auth.ProfileInput{
		Name:     req.Name,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		s.respondError(c, "Error while updating profile", err)
		return
	}

	respondOK(c, "Profile updated successfully", gin.H{"updatedUser": user})
}

func (s *Server) buyerOrders(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	buyerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		s.respondError(c, "Invalid user token", err)
		return
	}

	orders, err := s.orders.ListForBuyer(c.Request.Context(), buyerID)
	if err != nil {
		s.respondError(c, "Error while getting orders", err)
		return
	}

	respondOK(c, "Your orders", gin.H{"orders": orders})
}

func (s *Server) allOrders(c *gin.Context) {
	orders, err := s.orders.ListAll(c.Request.Context())
	if err != nil {
		s.respondError(c, "Error while getting all orders", err)
		return
	}

	respondOK(c, "All orders", gin.H{"orders": orders})
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Status is required", formatValidationError(err))
		return
	}

	updated, err := s.orders.UpdateStatus(c.Request.Context(), c.Param("orderId"), models.OrderStatus(req.Status))
	if err != nil {
		s.respondError(c, "Error while updating order status", err)
		return
	}

	respondOK(c, "Order status updated", gin.H{"order": updated})
}

// checkUserAuth and checkAdminAuth only confirm that the middleware
// chain let the request through; the client uses them for route guards.
func (s *Server) checkUserAuth(c *gin.Context) {
	respondOK(c, "Authorized", gin.H{"ok": true})
}

func (s *Server) checkAdminAuth(c *gin.Context) {
	respondOK(c, "Authorized", gin.H{"ok": true})
}
