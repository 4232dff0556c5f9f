package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingMode describes how an item's amount was produced
type PricingMode string

const (
	PricingModeUnit PricingMode = "unit" // amount = quantity x unit price
	PricingModeArea PricingMode = "area" // amount set independently from width/height/area rate
)

// IsValid checks if the pricing mode is valid
func (m PricingMode) IsValid() bool {
	return m == PricingModeUnit || m == PricingModeArea
}

// InvoiceItem is a line on an invoice.
// ProductID, PricingMode, Width, Height, AreaRate and Attributes are advanced fields that the
// ledger never recomputes; edits carry them over from the stored item.
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID          `json:"invoice_id"`
	Description string             `json:"description"`
	Quantity    decimal.Decimal    `json:"quantity"`
	UnitPrice   valueobject.Money  `json:"unit_price"`
	Amount      valueobject.Money  `json:"amount"`
	ProductID   *uuid.UUID         `json:"product_id,omitempty"`
	PricingMode PricingMode        `json:"pricing_mode"`
	Width       *decimal.Decimal   `json:"width,omitempty"`
	Height      *decimal.Decimal   `json:"height,omitempty"`
	AreaRate    *valueobject.Money `json:"area_rate,omitempty"`
	Attributes  map[string]any     `json:"attributes,omitempty"`
}

// ItemInput is the caller-supplied shape of an item on create or edit.
// ID identifies an existing item on edit; nil means a new item.
type ItemInput struct {
	ID          *uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   valueobject.Money
	Amount      *valueobject.Money // explicit amount, used for area-priced items
	ProductID   *uuid.UUID
	PricingMode PricingMode
	Width       *decimal.Decimal
	Height      *decimal.Decimal
	AreaRate    *valueobject.Money
	Attributes  map[string]any
}

func (in ItemInput) validate(index int) error {
	if strings.TrimSpace(in.Description) == "" {
		return shared.NewValidationError("INVALID_ITEM_DESCRIPTION",
			fmt.Sprintf("Item %d description cannot be blank", index+1))
	}
	if in.Quantity.IsNegative() {
		return shared.NewValidationError("INVALID_ITEM_QUANTITY",
			fmt.Sprintf("Item %d quantity cannot be negative", index+1))
	}
	if in.UnitPrice.IsNegative() {
		return shared.NewValidationError("INVALID_ITEM_PRICE",
			fmt.Sprintf("Item %d unit price cannot be negative", index+1))
	}
	if in.Amount != nil && in.Amount.IsNegative() {
		return shared.NewValidationError("INVALID_ITEM_AMOUNT",
			fmt.Sprintf("Item %d amount cannot be negative", index+1))
	}
	if in.PricingMode != "" && !in.PricingMode.IsValid() {
		return shared.NewValidationError("INVALID_PRICING_MODE",
			fmt.Sprintf("Item %d pricing mode %q is not valid", index+1, in.PricingMode))
	}
	return nil
}

func (in ItemInput) newItem(invoiceID uuid.UUID) InvoiceItem {
	mode := in.PricingMode
	if mode == "" {
		mode = PricingModeUnit
	}
	amount := in.UnitPrice.Multiply(in.Quantity)
	if in.Amount != nil {
		amount = *in.Amount
	}
	return InvoiceItem{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   invoiceID,
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Amount:      amount,
		ProductID:   in.ProductID,
		PricingMode: mode,
		Width:       in.Width,
		Height:      in.Height,
		AreaRate:    in.AreaRate,
		Attributes:  copyAttributes(in.Attributes),
	}
}

// applyTo updates an existing item, keeping every advanced field the input leaves unset
func (in ItemInput) applyTo(item InvoiceItem) InvoiceItem {
	item.Description = strings.TrimSpace(in.Description)
	item.Quantity = in.Quantity
	item.UnitPrice = in.UnitPrice

	if in.ProductID != nil {
		item.ProductID = in.ProductID
	}
	if in.PricingMode != "" {
		item.PricingMode = in.PricingMode
	}
	if in.Width != nil {
		item.Width = in.Width
	}
	if in.Height != nil {
		item.Height = in.Height
	}
	if in.AreaRate != nil {
		item.AreaRate = in.AreaRate
	}
	if in.Attributes != nil {
		merged := copyAttributes(item.Attributes)
		if merged == nil {
			merged = make(map[string]any, len(in.Attributes))
		}
		for k, v := range in.Attributes {
			merged[k] = v
		}
		item.Attributes = merged
	}

	switch {
	case in.Amount != nil:
		item.Amount = *in.Amount
	case item.PricingMode == PricingModeArea:
		// area amounts are set independently and survive edits that do not restate them
	default:
		item.Amount = in.UnitPrice.Multiply(in.Quantity)
	}
	item.UpdatedAt = time.Now()
	return item
}

func copyAttributes(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// InvoiceDetails holds the optional header fields of an invoice
type InvoiceDetails struct {
	InvoiceDate time.Time
	DueDate     *time.Time
	OrderID     *uuid.UUID
	ProjectName string
	Notes       string
}

// ItemChanges lists how an edit changed the stored item set
type ItemChanges struct {
	Added   []InvoiceItem
	Updated []InvoiceItem
	Removed []uuid.UUID
}

// Invoice is the billing document aggregate root
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string            `json:"invoice_number"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	OrderID       *uuid.UUID        `json:"order_id,omitempty"`
	InvoiceDate   time.Time         `json:"invoice_date"`
	DueDate       *time.Time        `json:"due_date,omitempty"`
	Subtotal      valueobject.Money `json:"subtotal"`
	TaxAmount     valueobject.Money `json:"tax_amount"`
	TotalAmount   valueobject.Money `json:"total_amount"`
	AmountPaid    valueobject.Money `json:"amount_paid"`
	Status        InvoiceStatus     `json:"status"`
	ProjectName   string            `json:"project_name,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Items         []InvoiceItem     `json:"items"`
}

// NewInvoice creates a draft invoice with amount_paid = 0
func NewInvoice(
	invoiceNumber string,
	customerID uuid.UUID,
	items []ItemInput,
	taxAmount valueobject.Money,
	details InvoiceDetails,
) (*Invoice, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, shared.NewValidationError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewValidationError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if err := validateItemInputs(items); err != nil {
		return nil, err
	}
	if taxAmount.IsNegative() {
		return nil, shared.NewValidationError("INVALID_TAX", "Tax amount cannot be negative")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		CustomerID:        customerID,
		TaxAmount:         taxAmount,
		AmountPaid:        valueobject.Zero(),
		Status:            InvoiceStatusDraft,
	}
	inv.applyDetails(details)
	if inv.InvoiceDate.IsZero() {
		inv.InvoiceDate = inv.CreatedAt
	}

	inv.Items = make([]InvoiceItem, 0, len(items))
	for _, in := range items {
		inv.Items = append(inv.Items, in.newItem(inv.ID))
	}
	inv.recalculateTotals()

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

func validateItemInputs(items []ItemInput) error {
	if len(items) == 0 {
		return shared.NewValidationError("EMPTY_ITEMS", "Invoice must have at least one item")
	}
	for i, in := range items {
		if err := in.validate(i); err != nil {
			return err
		}
	}
	return nil
}

func (inv *Invoice) applyDetails(details InvoiceDetails) {
	if !details.InvoiceDate.IsZero() {
		inv.InvoiceDate = details.InvoiceDate
	}
	inv.DueDate = details.DueDate
	inv.OrderID = details.OrderID
	inv.ProjectName = details.ProjectName
	inv.Notes = details.Notes
}

// Outstanding returns total_amount - amount_paid
func (inv *Invoice) Outstanding() valueobject.Money {
	return inv.TotalAmount.Subtract(inv.AmountPaid)
}

// IsDraft reports whether the invoice is in the caller-controlled draft state
func (inv *Invoice) IsDraft() bool {
	return inv.Status == InvoiceStatusDraft
}

func itemsSubtotal(items []InvoiceItem) valueobject.Money {
	subtotal := valueobject.Zero()
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}
	return subtotal
}

func (inv *Invoice) recalculateTotals() {
	inv.Subtotal = itemsSubtotal(inv.Items)
	inv.TotalAmount = inv.Subtotal.Add(inv.TaxAmount)
}

// rederive keeps status consistent with the amounts unless the invoice is a draft
func (inv *Invoice) rederive() {
	if !inv.IsDraft() {
		inv.Status = DeriveStatus(inv.TotalAmount, inv.AmountPaid)
	}
}

func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// mergeDetails overwrites only the header fields details carries: a zero date, a nil pointer
// or an empty string keeps the stored value.
func (inv *Invoice) mergeDetails(details InvoiceDetails) {
	if !details.InvoiceDate.IsZero() {
		inv.InvoiceDate = details.InvoiceDate
	}
	if details.DueDate != nil {
		inv.DueDate = details.DueDate
	}
	if details.OrderID != nil {
		inv.OrderID = details.OrderID
	}
	if details.ProjectName != "" {
		inv.ProjectName = details.ProjectName
	}
	if details.Notes != "" {
		inv.Notes = details.Notes
	}
}

// RelinksOrder reports whether details would move the invoice onto a different order
func (inv *Invoice) RelinksOrder(details *InvoiceDetails) bool {
	if details == nil || details.OrderID == nil {
		return false
	}
	return inv.OrderID == nil || *inv.OrderID != *details.OrderID
}

// Edit replaces the item set and tax amount, recomputing subtotal and total.
// Items matched by id keep their advanced fields; items without id are inserted;
// stored items absent from the new set are removed. amount_paid is never touched.
// Header fields are merged: only the fields details carries change.
func (inv *Invoice) Edit(items []ItemInput, taxAmount valueobject.Money, details *InvoiceDetails) (*ItemChanges, error) {
	if err := validateItemInputs(items); err != nil {
		return nil, err
	}
	if taxAmount.IsNegative() {
		return nil, shared.NewValidationError("INVALID_TAX", "Tax amount cannot be negative")
	}

	existing := make(map[uuid.UUID]InvoiceItem, len(inv.Items))
	for _, item := range inv.Items {
		existing[item.ID] = item
	}

	changes := &ItemChanges{}
	seen := make(map[uuid.UUID]bool, len(items))
	next := make([]InvoiceItem, 0, len(items))
	for i, in := range items {
		if in.ID == nil {
			item := in.newItem(inv.ID)
			changes.Added = append(changes.Added, item)
			next = append(next, item)
			continue
		}
		stored, ok := existing[*in.ID]
		if !ok {
			return nil, shared.NewValidationError("UNKNOWN_ITEM",
				fmt.Sprintf("Item %d references %s which does not belong to invoice %s", i+1, in.ID, inv.InvoiceNumber))
		}
		if seen[*in.ID] {
			return nil, shared.NewValidationError("DUPLICATE_ITEM",
				fmt.Sprintf("Item %s appears more than once", in.ID))
		}
		seen[*in.ID] = true
		item := in.applyTo(stored)
		changes.Updated = append(changes.Updated, item)
		next = append(next, item)
	}
	for _, item := range inv.Items {
		if !seen[item.ID] {
			changes.Removed = append(changes.Removed, item.ID)
		}
	}

	newTotal := itemsSubtotal(next).Add(taxAmount)
	if newTotal.LessThan(inv.AmountPaid) {
		return nil, shared.NewValidationError("TOTAL_BELOW_PAID",
			fmt.Sprintf("New total %s would be below the amount already paid %s", newTotal, inv.AmountPaid))
	}

	inv.Items = next
	inv.TaxAmount = taxAmount
	if details != nil {
		inv.mergeDetails(*details)
	}
	inv.recalculateTotals()
	inv.rederive()
	inv.touch()

	inv.AddDomainEvent(NewInvoiceUpdatedEvent(inv))
	return changes, nil
}

// AddItem appends a new item and recomputes totals
func (inv *Invoice) AddItem(in ItemInput) (*InvoiceItem, error) {
	if err := in.validate(len(inv.Items)); err != nil {
		return nil, err
	}
	item := in.newItem(inv.ID)
	inv.Items = append(inv.Items, item)
	inv.recalculateTotals()
	inv.rederive()
	inv.touch()
	inv.AddDomainEvent(NewInvoiceUpdatedEvent(inv))
	return &item, nil
}

// RemoveItem deletes one item and recomputes totals.
// The last item cannot be removed, and the new total may not drop below amount_paid.
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	idx := -1
	for i, item := range inv.Items {
		if item.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return shared.NewNotFoundError("invoice item", itemID.String())
	}
	if len(inv.Items) == 1 {
		return shared.NewValidationError("LAST_ITEM", "Invoice must keep at least one item")
	}

	next := make([]InvoiceItem, 0, len(inv.Items)-1)
	next = append(next, inv.Items[:idx]...)
	next = append(next, inv.Items[idx+1:]...)
	if itemsSubtotal(next).Add(inv.TaxAmount).LessThan(inv.AmountPaid) {
		return shared.NewValidationError("TOTAL_BELOW_PAID", "Removing the item would drop the total below the amount already paid")
	}

	inv.Items = next
	inv.recalculateTotals()
	inv.rederive()
	inv.touch()
	inv.AddDomainEvent(NewInvoiceUpdatedEvent(inv))
	return nil
}

// ApplyPayment adds an allocated amount to amount_paid and derives the new status.
// Amounts above the outstanding balance are rejected so amount_paid never exceeds the total.
func (inv *Invoice) ApplyPayment(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	outstanding := inv.Outstanding()
	if amount.GreaterThan(outstanding) {
		return shared.NewValidationError("EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Payment amount %s exceeds outstanding amount %s on invoice %s",
				amount, outstanding.ClampNonNegative(), inv.InvoiceNumber))
	}

	previous := inv.Status
	inv.AmountPaid = inv.AmountPaid.Add(amount)
	inv.Status = DeriveStatus(inv.TotalAmount, inv.AmountPaid)
	inv.touch()

	inv.AddDomainEvent(NewInvoicePaymentAppliedEvent(inv, amount, previous))
	return nil
}

// ReversePayment removes a previously applied amount (never below zero) and re-derives status
func (inv *Invoice) ReversePayment(amount valueobject.Money) {
	previous := inv.Status
	inv.AmountPaid = inv.AmountPaid.Subtract(amount).ClampNonNegative()
	inv.rederive()
	inv.touch()
	if inv.Status != previous {
		inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, previous))
	}
}

// StatusChange describes the effect of a manual status transition
type StatusChange struct {
	From      InvoiceStatus
	To        InvoiceStatus
	PaidDelta valueobject.Money // positive when marking paid, negative when marking unpaid
}

// SetStatus applies a caller-requested status.
//
//   - paid: amount_paid becomes total_amount; PaidDelta is the amount that was still outstanding
//   - unpaid: amount_paid becomes zero; PaidDelta is minus the amount previously paid
//   - draft: set directly
//   - partial: accepted only when it matches the derived status
func (inv *Invoice) SetStatus(status InvoiceStatus) (*StatusChange, error) {
	if !status.IsValid() {
		return nil, shared.NewValidationError("INVALID_STATUS", fmt.Sprintf("Status %q is not valid", status))
	}

	change := &StatusChange{From: inv.Status, To: status, PaidDelta: valueobject.Zero()}
	switch status {
	case InvoiceStatusPaid:
		change.PaidDelta = inv.Outstanding().ClampNonNegative()
		inv.AmountPaid = inv.AmountPaid.Max(inv.TotalAmount)
	case InvoiceStatusUnpaid:
		change.PaidDelta = inv.AmountPaid.Negate()
		inv.AmountPaid = valueobject.Zero()
	case InvoiceStatusPartial:
		if derived := DeriveStatus(inv.TotalAmount, inv.AmountPaid); derived != InvoiceStatusPartial {
			return nil, shared.NewValidationError("INVALID_STATUS_TRANSITION",
				fmt.Sprintf("Invoice %s cannot be partial: paid %s of %s derives %s",
					inv.InvoiceNumber, inv.AmountPaid, inv.TotalAmount, derived))
		}
	}
	inv.Status = status
	inv.touch()

	inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, change.From))
	return change, nil
}

// MarkDeleted records the deletion event on the aggregate
func (inv *Invoice) MarkDeleted() {
	inv.AddDomainEvent(NewInvoiceDeletedEvent(inv))
}
