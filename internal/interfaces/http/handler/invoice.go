package handler

import (
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	domain "github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	BaseHandler
	invoices *ledger.InvoiceService
	payments *ledger.PaymentService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *ledger.InvoiceService, payments *ledger.PaymentService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, payments: payments}
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	inv, err := h.invoices.CreateInvoice(c.Request.Context(), ledger.CreateInvoiceCommand{
		InvoiceNumber: req.InvoiceNumber,
		CustomerID:    req.CustomerID,
		Items:         toInputs(req.Items),
		TaxAmount:     valueobject.NewMoney(req.TaxAmount),
		Details:       req.InvoiceDetailsRequest.toDetails(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	detail, err := h.invoices.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// ListPayments handles GET /invoices/:id/payments
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	payments, err := h.invoices.ListInvoicePayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Update handles PUT /invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req EditInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cmd := ledger.EditInvoiceCommand{
		Items:     toInputs(req.Items),
		TaxAmount: valueobject.NewMoney(req.TaxAmount),
	}
	if req.Details != nil {
		details := req.Details.toDetails()
		cmd.Details = &details
	}
	inv, err := h.invoices.EditInvoice(c.Request.Context(), id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// AddItem handles POST /invoices/:id/items
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	inv, err := h.invoices.AddItem(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// DeleteItem handles DELETE /invoices/:id/items/:item_id
func (h *InvoiceHandler) DeleteItem(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.ParseID(c, "item_id")
	if !ok {
		return
	}
	inv, err := h.invoices.DeleteItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// SetStatus handles PATCH /invoices/:id/status
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	inv, err := h.invoices.SetStatus(c.Request.Context(), id, domain.InvoiceStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Delete handles DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.invoices.DeleteInvoice(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AllocationCap handles GET /invoices/:id/allocation-cap?amount=
func (h *InvoiceHandler) AllocationCap(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		h.BadRequest(c, "amount must be a decimal number")
		return
	}
	capped, err := h.payments.CapAllocation(c.Request.Context(), id, valueobject.NewMoney(amount))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"invoice_id": id,
		"requested":  valueobject.NewMoney(amount),
		"capped":     capped,
	})
}
