package handler

import (
	"strings"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	domain "github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportHandler serves the customer debt report and commission listings
type ReportHandler struct {
	BaseHandler
	debts       *ledger.DebtService
	commissions *ledger.CommissionService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(debts *ledger.DebtService, commissions *ledger.CommissionService) *ReportHandler {
	return &ReportHandler{debts: debts, commissions: commissions}
}

// CustomerDebts handles GET /reports/customer-debts?search=
func (h *ReportHandler) CustomerDebts(c *gin.Context) {
	var (
		report *ledger.DebtReport
		err    error
	)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		report, err = h.debts.SearchCustomerDebts(c.Request.Context(), search)
	} else {
		report, err = h.debts.ListCustomerDebts(c.Request.Context())
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// RefreshCustomerDebts handles POST /reports/customer-debts/refresh
func (h *ReportHandler) RefreshCustomerDebts(c *gin.Context) {
	if err := h.debts.Invalidate(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	report, err := h.debts.Rebuild(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Commissions handles GET /commissions?user_id=
func (h *ReportHandler) Commissions(c *gin.Context) {
	var filter domain.CommissionFilter
	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "user_id must be a UUID")
			return
		}
		filter.UserID = &userID
	}
	views, err := h.commissions.ListCommissions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}
