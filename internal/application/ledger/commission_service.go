package ledger

import (
	"context"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/google/uuid"
)

// CommissionService is the read path joining commissions to the payment state of their orders
type CommissionService struct {
	core
}

// NewCommissionService creates a new CommissionService
func NewCommissionService(repos Repositories, opts Options) *CommissionService {
	return &CommissionService{core: newCore(repos, nil, opts, "commission_service")}
}

// ListCommissions returns commissions with paid status taken from the linked order,
// or from the order's invoice when the order has no status of its own
func (s *CommissionService) ListCommissions(ctx context.Context, filter ledger.CommissionFilter) ([]ledger.CommissionView, error) {
	commissions, err := s.repos.Commissions().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(commissions) == 0 {
		return []ledger.CommissionView{}, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(commissions))
	orderIDs := make([]uuid.UUID, 0, len(commissions))
	for _, c := range commissions {
		if _, ok := seen[c.OrderID]; ok {
			continue
		}
		seen[c.OrderID] = struct{}{}
		orderIDs = append(orderIDs, c.OrderID)
	}

	orders, err := s.repos.Orders().FindByIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	invoices, err := s.repos.Invoices().FindByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	views := make([]ledger.CommissionView, 0, len(commissions))
	for _, c := range commissions {
		order := orders[c.OrderID]
		view := ledger.CommissionView{
			Commission: *c,
			PaidStatus: ledger.ResolveCommissionPaidStatus(order, invoices[c.OrderID]),
		}
		if order != nil {
			view.OrderNumber = order.OrderNumber
		}
		views = append(views, view)
	}
	return views, nil
}
