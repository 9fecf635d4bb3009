package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type tableRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) listTables(c *gin.Context) {
	tables, err := h.engine.ListTables(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *Handler) createTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	table, err := h.engine.CreateTable(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

// updateTable renames a table. Status is a projection of the order ledger,
// so a status in the body is ignored.
func (h *Handler) updateTable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	table, err := h.engine.RenameTable(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *Handler) deleteTable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.engine.DeleteTable(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) requestPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.engine.RequestPayment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
