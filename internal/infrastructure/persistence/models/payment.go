package models

import (
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for payments of every origin
type PaymentModel struct {
	BaseModel
	CustomerID *uuid.UUID      `gorm:"type:uuid;index"`
	InvoiceID  *uuid.UUID      `gorm:"type:uuid;index"`
	OrderID    *uuid.UUID      `gorm:"type:uuid;index"`
	SummaryID  *uuid.UUID      `gorm:"type:uuid;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method     string          `gorm:"type:varchar(30);not null"`
	Reference  string          `gorm:"type:varchar(100)"`
	Notes      string          `gorm:"type:text"`
	Origin     string          `gorm:"type:varchar(20);not null;index"`
	PaidAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *ledger.Payment {
	return &ledger.Payment{
		BaseEntity: m.BaseModel.ToDomain(),
		CustomerID: m.CustomerID,
		InvoiceID:  m.InvoiceID,
		OrderID:    m.OrderID,
		SummaryID:  m.SummaryID,
		Amount:     valueobject.NewMoney(m.Amount),
		Method:     ledger.PaymentMethod(m.Method),
		Reference:  m.Reference,
		Notes:      m.Notes,
		Origin:     ledger.PaymentOrigin(m.Origin),
		PaidAt:     m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.CustomerID = p.CustomerID
	m.InvoiceID = p.InvoiceID
	m.OrderID = p.OrderID
	m.SummaryID = p.SummaryID
	m.Amount = p.Amount.Amount()
	m.Method = string(p.Method)
	m.Reference = p.Reference
	m.Notes = p.Notes
	m.Origin = string(p.Origin)
	m.PaidAt = p.PaidAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
