package handler

import (
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	domain "github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment recording and outstanding-balance lookups
type PaymentHandler struct {
	BaseHandler
	payments *ledger.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *ledger.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// ListOutstanding handles GET /customers/:id/outstanding-invoices
func (h *PaymentHandler) ListOutstanding(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	invoices, err := h.payments.ListOutstanding(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// Record handles POST /payments
func (h *PaymentHandler) Record(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	summary, err := h.payments.RecordPayment(c.Request.Context(), ledger.RecordPaymentCommand{
		CustomerID:       req.CustomerID,
		Method:           domain.PaymentMethod(req.Method),
		Reference:        req.Reference,
		Notes:            req.Notes,
		Allocations:      req.toAllocations(),
		CapToOutstanding: req.CapToOutstanding,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, summary)
}

// Delete handles DELETE /payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.payments.DeletePayment(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
