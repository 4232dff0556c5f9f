package models

import (
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	OrderID       *uuid.UUID         `gorm:"type:uuid;uniqueIndex:idx_invoices_order_id"`
	InvoiceDate   time.Time          `gorm:"not null;index"`
	DueDate       *time.Time
	Subtotal      decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	TaxAmount     decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	TotalAmount   decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	AmountPaid    decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Status        string             `gorm:"type:varchar(20);not null;index"`
	ProjectName   string             `gorm:"type:varchar(200)"`
	Notes         string             `gorm:"type:text"`
	Items         []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice, including loaded items
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	inv := &ledger.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		CustomerID:        m.CustomerID,
		OrderID:           m.OrderID,
		InvoiceDate:       m.InvoiceDate,
		DueDate:           m.DueDate,
		Subtotal:          valueobject.NewMoney(m.Subtotal),
		TaxAmount:         valueobject.NewMoney(m.TaxAmount),
		TotalAmount:       valueobject.NewMoney(m.TotalAmount),
		AmountPaid:        valueobject.NewMoney(m.AmountPaid),
		Status:            ledger.InvoiceStatus(m.Status),
		ProjectName:       m.ProjectName,
		Notes:             m.Notes,
		Items:             make([]ledger.InvoiceItem, 0, len(m.Items)),
	}
	for i := range m.Items {
		inv.Items = append(inv.Items, *m.Items[i].ToDomain())
	}
	return inv
}

// FromDomain populates the header columns from a domain Invoice. Items are not copied.
func (m *InvoiceModel) FromDomain(inv *ledger.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.OrderID = inv.OrderID
	m.InvoiceDate = inv.InvoiceDate
	m.DueDate = inv.DueDate
	m.Subtotal = inv.Subtotal.Amount()
	m.TaxAmount = inv.TaxAmount.Amount()
	m.TotalAmount = inv.TotalAmount.Amount()
	m.AmountPaid = inv.AmountPaid.Amount()
	m.Status = string(inv.Status)
	m.ProjectName = inv.ProjectName
	m.Notes = inv.Notes
}

// InvoiceModelFromDomain creates a persistence model with items from a domain Invoice
func InvoiceModelFromDomain(inv *ledger.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	m.Items = make([]InvoiceItemModel, 0, len(inv.Items))
	for i := range inv.Items {
		m.Items = append(m.Items, *InvoiceItemModelFromDomain(&inv.Items[i]))
	}
	return m
}

// InvoiceItemModel is the persistence model for an invoice line.
// Attributes holds the opaque advanced fields the ledger never interprets.
type InvoiceItemModel struct {
	BaseModel
	InvoiceID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	Description string            `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Amount      decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	ProductID   *uuid.UUID        `gorm:"type:uuid"`
	PricingMode string            `gorm:"type:varchar(10);not null;default:'unit'"`
	Width       *decimal.Decimal  `gorm:"type:decimal(18,4)"`
	Height      *decimal.Decimal  `gorm:"type:decimal(18,4)"`
	AreaRate    *decimal.Decimal  `gorm:"type:decimal(18,2)"`
	Attributes  datatypes.JSONMap
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem
func (m *InvoiceItemModel) ToDomain() *ledger.InvoiceItem {
	item := &ledger.InvoiceItem{
		BaseEntity:  m.BaseModel.ToDomain(),
		InvoiceID:   m.InvoiceID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   valueobject.NewMoney(m.UnitPrice),
		Amount:      valueobject.NewMoney(m.Amount),
		ProductID:   m.ProductID,
		PricingMode: ledger.PricingMode(m.PricingMode),
		Width:       m.Width,
		Height:      m.Height,
	}
	if m.AreaRate != nil {
		rate := valueobject.NewMoney(*m.AreaRate)
		item.AreaRate = &rate
	}
	if len(m.Attributes) > 0 {
		item.Attributes = map[string]any(m.Attributes)
	}
	return item
}

// FromDomain populates the persistence model from a domain InvoiceItem
func (m *InvoiceItemModel) FromDomain(item *ledger.InvoiceItem) {
	m.FromDomainBaseEntity(item.BaseEntity)
	m.InvoiceID = item.InvoiceID
	m.Description = item.Description
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice.Amount()
	m.Amount = item.Amount.Amount()
	m.ProductID = item.ProductID
	m.PricingMode = string(item.PricingMode)
	m.Width = item.Width
	m.Height = item.Height
	m.AreaRate = nil
	if item.AreaRate != nil {
		rate := item.AreaRate.Amount()
		m.AreaRate = &rate
	}
	m.Attributes = nil
	if len(item.Attributes) > 0 {
		m.Attributes = datatypes.JSONMap(item.Attributes)
	}
}

// InvoiceItemModelFromDomain creates a persistence model from a domain InvoiceItem
func InvoiceItemModelFromDomain(item *ledger.InvoiceItem) *InvoiceItemModel {
	m := &InvoiceItemModel{}
	m.FromDomain(item)
	return m
}
