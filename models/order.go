package models

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// ShippingAddress is embedded in the orders table with a shipping_ prefix.
type ShippingAddress struct {
	FullName string `gorm:"type:varchar(255)" json:"fullName" binding:"required,min=2"`
	Address  string `gorm:"type:varchar(255)" json:"address" binding:"required,min=5"`
	City     string `gorm:"type:varchar(100)" json:"city" binding:"required,min=2"`
	State    string `gorm:"type:varchar(100)" json:"state" binding:"required,min=2"`
	ZipCode  string `gorm:"type:varchar(20)" json:"zipCode" binding:"required,zipcode"`
	Country  string `gorm:"type:varchar(100)" json:"country" binding:"required,min=2"`
	Phone    string `gorm:"type:varchar(40)" json:"phone" binding:"required,phone"`
}

// OrderItem is a line of an order. Price is the unit price at checkout time.
type OrderItem struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID      string  `gorm:"type:varchar(64);not null;index" json:"-"`
	ProductID    string  `gorm:"type:varchar(64);not null" json:"productId"`
	ProductName  string  `gorm:"type:varchar(255);not null" json:"productName"`
	ProductImage string  `gorm:"type:text" json:"productImage"`
	Quantity     int     `gorm:"not null" json:"quantity"`
	Price        float64 `gorm:"not null" json:"price"`
}

type Order struct {
	ID              string          `gorm:"type:varchar(64);primaryKey" json:"id"`
	UserID          string          `gorm:"type:varchar(64);not null;index" json:"userId"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total           float64         `gorm:"not null" json:"total"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	PaymentIntentID string          `gorm:"type:varchar(255);index" json:"paymentIntentId"`
	CreatedAt       time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CalculateTotal sums the price snapshot of every line.
func (o *Order) CalculateTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	if o.Items != nil {
		o.Items = append([]OrderItem(nil), o.Items...)
	}
	return o
}
