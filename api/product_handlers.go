package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/models"
	"github.com/gin-gonic/gin"
)

// maxPhotoBytes caps uploaded product photos at 1MB.
const maxPhotoBytes = 1 << 20

// readProductForm validates the multipart product form in a fixed
// order: name, description, price, category, quantity, then photo
// size. The first failing check wins.
func readProductForm(c *gin.Context) (catalog.ProductInput, string) {
	var in catalog.ProductInput

	in.Name = c.PostForm("name")
	if in.Name == "" {
		return in, "Name is required"
	}
	in.Description = c.PostForm("description")
	if in.Description == "" {
		return in, "Description is required"
	}

	rawPrice := c.PostForm("price")
	if rawPrice == "" {
		return in, "Price is required"
	}
	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil || price < 0 {
		return in, "Price must be a non-negative number"
	}
	in.Price = price

	in.Category = c.PostForm("category")
	if in.Category == "" {
		return in, "Category is required"
	}

	rawQuantity := c.PostForm("quantity")
	if rawQuantity == "" {
		return in, "Quantity is required"
	}
	quantity, err := strconv.Atoi(rawQuantity)
	if err != nil || quantity < 0 {
		return in, "Quantity must be a non-negative integer"
	}
	in.Quantity = quantity

	in.Shipping, _ = strconv.ParseBool(c.PostForm("shipping"))

	file, header, err := c.Request.FormFile("photo")
	if err == nil {
		defer file.Close()
		if header.Size > maxPhotoBytes {
			return in, "Photo should be less than 1MB"
		}
		data, err := io.ReadAll(file)
		if err != nil {
			return in, "Photo could not be read"
		}
		in.Photo = &models.Photo{
			Data:        data,
			ContentType: header.Header.Get("Content-Type"),
		}
	}

	return in, ""
}

func (s *Server) createProduct(c *gin.Context) {
	in, msg := readProductForm(c)
	if msg != "" {
		respondValidation(c, msg, nil)
		return
	}

	product, err := s.catalog.CreateProduct(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, "Error in creating product", err)
		return
	}

	respondCreated(c, "Product created successfully", gin.H{"products": product})
}

func (s *Server) updateProduct(c *gin.Context) {
	in, msg := readProductForm(c)
	if msg != "" {
		respondValidation(c, msg, nil)
		return
	}

	product, err := s.catalog.UpdateProduct(c.Request.Context(), c.Param("pid"), in)
	if err != nil {
		s.respondError(c, "Error in updating product", err)
		return
	}

	respondOK(c, "Product updated successfully", gin.H{"products": product})
}

func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.catalog.DeleteProduct(c.Request.Context(), c.Param("pid")); err != nil {
		s.respondError(c, "Error while deleting product", err)
		return
	}

	respondOK(c, "Product deleted successfully", nil)
}

func (s *Server) listProducts(c *gin.Context) {
	products, total, err := s.catalog.List(c.Request.Context())
	if err != nil {
		s.respondError(c, "Error in getting products", err)
		return
	}

	respondOK(c, "All products", gin.H{
		"products":  products,
		"counTotal": len(products),
		"total":     total,
	})
}

func (s *Server) getProduct(c *gin.Context) {
	product, category, err := s.catalog.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.respondError(c, "Error while getting single product", err)
		return
	}

	respondOK(c, "Single product fetched", gin.H{
		"product":  product,
		"category": category,
	})
}

func (s *Server) productPhoto(c *gin.Context) {
	photo, err := s.catalog.Photo(c.Request.Context(), c.Param("pid"))
	if err != nil {
		s.respondError(c, "Error while getting photo", err)
		return
	}
	if len(photo.Data) == 0 {
		c.JSON(http.StatusNotFound, envelope(false, "Product has no photo", nil))
		return
	}

	c.Data(http.StatusOK, photo.ContentType, photo.Data)
}

func (s *Server) productList(c *gin.Context) {
	// Missing or malformed page falls back to the first page.
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		page = 1
	}

	products, err := s.catalog.Page(c.Request.Context(), page)
	if err != nil {
		s.respondError(c, "Error in per-page product list", err)
		return
	}

	respondOK(c, "Product list", gin.H{"products": products})
}

func (s *Server) productCount(c *gin.Context) {
	total, err := s.catalog.Count(c.Request.Context())
	if err != nil {
		s.respondError(c, "Error in product count", err)
		return
	}

	respondOK(c, "Product count", gin.H{"total": total})
}

func (s *Server) productFilters(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid filter request", formatValidationError(err))
		return
	}

	products, err := s.catalog.Filter(c.Request.Context(), req.Checked, req.Radio)
	if err != nil {
		s.respondError(c, "Error while filtering products", err)
		return
	}

	respondOK(c, "Filtered products", gin.H{"products": products})
}

func (s *Server) searchProducts(c *gin.Context) {
	products, err := s.catalog.Search(c.Request.Context(), c.Param("keyword"))
	if err != nil {
		s.respondError(c, "Error in search product API", err)
		return
	}

	respondOK(c, "Search results", gin.H{"products": products})
}

func (s *Server) relatedProducts(c *gin.Context) {
	products, category, err := s.catalog.Related(c.Request.Context(), c.Param("pid"), c.Param("cid"))
	if err != nil {
		s.respondError(c, "Error while getting related products", err)
		return
	}

	respondOK(c, "Related products", gin.H{
		"products": products,
		"category": category,
	})
}

func (s *Server) productsByCategory(c *gin.Context) {
	category, products, err := s.catalog.CategoryProducts(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.respondError(c, "Error while getting products by category", err)
		return
	}

	respondOK(c, "Category products", gin.H{
		"category": category,
		"products": products,
	})
}
