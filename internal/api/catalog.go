package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type productRequest struct {
	Name       string  `json:"name" binding:"required"`
	Price      float64 `json:"price"`
	CategoryID int64   `json:"categoryId" binding:"required"`
	Color      string  `json:"color"`
}

type sortCategoriesRequest struct {
	SortedIDs []int64 `json:"sortedIds" binding:"required"`
}

type sortProductsRequest struct {
	CategoryID int64   `json:"categoryId" binding:"required"`
	SortedIDs  []int64 `json:"sortedIds" binding:"required"`
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) updateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalog.UpdateCategory(c.Request.Context(), id, req.Name, req.Color); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "name": req.Name, "color": req.Color})
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) sortCategories(c *gin.Context) {
	var req sortCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sortedIds must be an array of ids", "details": err.Error()})
		return
	}

	if err := h.catalog.ReorderCategories(c.Request.Context(), req.SortedIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) listProducts(c *gin.Context) {
	var categoryID int64
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid categoryId"})
			return
		}
		categoryID = id
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), req.Name, req.Price, req.CategoryID, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalog.UpdateProduct(c.Request.Context(), id, req.Name, req.Price, req.CategoryID, req.Color); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id": id, "name": req.Name, "price": req.Price,
		"categoryId": req.CategoryID, "color": req.Color,
	})
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) sortProducts(c *gin.Context) {
	var req sortProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "categoryId and sortedIds (array) are required", "details": err.Error()})
		return
	}

	if err := h.catalog.ReorderProducts(c.Request.Context(), req.CategoryID, req.SortedIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
