package api

import (
	"errors"

	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
)

func (s *Server) createCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Name is required", formatValidationError(err))
		return
	}

	category, err := s.catalog.CreateCategory(c.Request.Context(), req.Name)
	if errors.Is(err, repository.ErrDuplicateCategory) {
		// Distinct no-op path: nothing was written.
		s.respondError(c, "Category already exists", err)
		return
	}
	if err != nil {
		s.respondError(c, "Error in category creation", err)
		return
	}

	respondCreated(c, "New category created", gin.H{"category": category})
}

func (s *Server) updateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Name is required", formatValidationError(err))
		return
	}

	category, err := s.catalog.UpdateCategory(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		s.respondError(c, "Error while updating category", err)
		return
	}

	respondOK(c, "Category updated successfully", gin.H{"category": category})
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.catalog.Categories(c.Request.Context())
	if err != nil {
		s.respondError(c, "Error while getting all categories", err)
		return
	}

	respondOK(c, "All categories list", gin.H{"category": categories})
}

func (s *Server) getCategory(c *gin.Context) {
	category, err := s.catalog.CategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.respondError(c, "Error while getting single category", err)
		return
	}

	respondOK(c, "Get single category successfully", gin.H{"category": category})
}

func (s *Server) deleteCategory(c *gin.Context) {
	if err := s.catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, "Error while deleting category", err)
		return
	}

	respondOK(c, "Category deleted successfully", nil)
}
