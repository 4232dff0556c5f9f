package models

import (
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for customers
type CustomerModel struct {
	BaseModel
	Name    string `gorm:"type:varchar(200);not null;index"`
	Email   string `gorm:"type:varchar(200)"`
	Phone   string `gorm:"type:varchar(50)"`
	Company string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *ledger.Customer {
	return &ledger.Customer{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Company:    m.Company,
	}
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer
func CustomerModelFromDomain(c *ledger.Customer) *CustomerModel {
	m := &CustomerModel{Name: c.Name, Email: c.Email, Phone: c.Phone, Company: c.Company}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// OrderModel is the persistence model for print orders
type OrderModel struct {
	BaseModel
	OrderNumber    string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	PaymentStatus  string    `gorm:"type:varchar(20);not null;default:'unpaid'"`
	WorkflowStatus string    `gorm:"type:varchar(30)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *ledger.Order {
	return &ledger.Order{
		BaseEntity:     m.BaseModel.ToDomain(),
		OrderNumber:    m.OrderNumber,
		CustomerID:     m.CustomerID,
		PaymentStatus:  ledger.OrderPaymentStatus(m.PaymentStatus),
		WorkflowStatus: m.WorkflowStatus,
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *ledger.Order) *OrderModel {
	m := &OrderModel{
		OrderNumber:    o.OrderNumber,
		CustomerID:     o.CustomerID,
		PaymentStatus:  string(o.PaymentStatus),
		WorkflowStatus: o.WorkflowStatus,
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	return m
}

// CommissionModel is the persistence model for staff commissions
type CommissionModel struct {
	BaseModel
	UserID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	Role                 string          `gorm:"type:varchar(30);not null"`
	CommissionPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	CommissionAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (CommissionModel) TableName() string {
	return "commissions"
}

// ToDomain converts the persistence model to a domain Commission
func (m *CommissionModel) ToDomain() *ledger.Commission {
	return &ledger.Commission{
		BaseEntity:           m.BaseModel.ToDomain(),
		UserID:               m.UserID,
		OrderID:              m.OrderID,
		Role:                 ledger.CommissionRole(m.Role),
		CommissionPercentage: m.CommissionPercentage,
		CommissionAmount:     valueobject.NewMoney(m.CommissionAmount),
	}
}

// CommissionModelFromDomain creates a new persistence model from a domain Commission
func CommissionModelFromDomain(c *ledger.Commission) *CommissionModel {
	m := &CommissionModel{
		UserID:               c.UserID,
		OrderID:              c.OrderID,
		Role:                 string(c.Role),
		CommissionPercentage: c.CommissionPercentage,
		CommissionAmount:     c.CommissionAmount.Amount(),
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// Collaborator tables owned by the order workflow. The ledger only counts and deletes their
// rows by order_id during a cascade.

// OrderFileModel is an uploaded artwork or proof attached to an order
type OrderFileModel struct {
	BaseModel
	OrderID  uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName string    `gorm:"type:varchar(255);not null"`
	FileURL  string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OrderFileModel) TableName() string {
	return ledger.DependentOrderFiles
}

// OrderCommentModel is a staff comment on an order
type OrderCommentModel struct {
	BaseModel
	OrderID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	AuthorID *uuid.UUID `gorm:"type:uuid"`
	Body     string     `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (OrderCommentModel) TableName() string {
	return ledger.DependentOrderComments
}

// OrderHistoryModel is one workflow transition of an order
type OrderHistoryModel struct {
	BaseModel
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus string    `gorm:"type:varchar(30)"`
	ToStatus   string    `gorm:"type:varchar(30);not null"`
	Note       string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OrderHistoryModel) TableName() string {
	return ledger.DependentOrderHistory
}

// NotificationModel is a user notification that may point at an order
type NotificationModel struct {
	BaseModel
	UserID  *uuid.UUID `gorm:"type:uuid;index"`
	OrderID *uuid.UUID `gorm:"type:uuid;index"`
	Title   string     `gorm:"type:varchar(200);not null"`
	Message string     `gorm:"type:text"`
	IsRead  bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return ledger.DependentNotifications
}
