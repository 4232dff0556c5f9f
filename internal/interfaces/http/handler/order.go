package handler

import (
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles order cascade deletes and payment-status syncs
type OrderHandler struct {
	BaseHandler
	cascade  *ledger.CascadeService
	invoices *ledger.InvoiceService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(cascade *ledger.CascadeService, invoices *ledger.InvoiceService) *OrderHandler {
	return &OrderHandler{cascade: cascade, invoices: invoices}
}

// Delete handles DELETE /orders/:id?mode=transactional|best_effort
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	result, err := h.cascade.DeleteOrderCascade(c.Request.Context(), id, ledger.CascadeMode(c.Query("mode")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncPaymentStatus handles POST /orders/:id/sync-payment-status
func (h *OrderHandler) SyncPaymentStatus(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	status, err := h.invoices.SyncOrderPaymentStatus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"order_id": id, "payment_status": status})
}
