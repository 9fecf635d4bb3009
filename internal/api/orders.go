package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	TableID   int64 `json:"tableId" binding:"required"`
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

type updateOrderRequest struct {
	// Pointer so an explicit 0 (implicit delete) survives binding.
	Quantity *int `json:"quantity" binding:"required"`
}

type transferRequest struct {
	FromTableID int64 `json:"fromTableId" binding:"required"`
	ToTableID   int64 `json:"toTableId" binding:"required"`
}

type settleRequest struct {
	TableID     int64  `json:"tableId" binding:"required"`
	PaymentType string `json:"paymentType" binding:"required,oneof=Cash Card"`
}

func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	line, err := h.engine.AddOrIncrementLine(c.Request.Context(), req.TableID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": line.ID})
}

func (h *Handler) listOrders(c *gin.Context) {
	tableID, ok := pathID(c, "tableId")
	if !ok {
		return
	}

	orders, err := h.engine.OrdersForTable(c.Request.Context(), tableID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) updateOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	line, err := h.engine.SetLineQuantity(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	if line == nil {
		// Quantity below 1 deleted the line.
		c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": line.ID, "quantity": line.Quantity, "total": line.Total})
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.engine.RemoveLine(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) transferOrders(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fromTableId and toTableId are required", "details": err.Error()})
		return
	}

	if err := h.engine.TransferOrders(c.Request.Context(), req.FromTableID, req.ToTableID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) settlePayment(c *gin.Context) {
	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	payment, err := h.engine.SettlePayment(c.Request.Context(), req.TableID, req.PaymentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "paymentId": payment.ID})
}

func (h *Handler) paymentHistory(c *gin.Context) {
	payments, err := h.reports.History(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *Handler) dailyReport(c *gin.Context) {
	report, err := h.reports.Daily(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) receipt(c *gin.Context) {
	tableID, ok := pathID(c, "tableId")
	if !ok {
		return
	}

	receipt, err := h.engine.Receipt(c.Request.Context(), tableID, h.venueName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}
