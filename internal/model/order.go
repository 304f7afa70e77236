package model

import "time"

// OrderStatus is the fulfillment state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from s to next
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Address is a shipping destination
type Address struct {
	FullName      string `json:"fullName" bson:"fullName" validate:"required"`
	StreetAddress string `json:"streetAddress" bson:"streetAddress" validate:"required"`
	City          string `json:"city" bson:"city" validate:"required"`
	State         string `json:"state" bson:"state" validate:"required"`
	ZipCode       string `json:"zipCode" bson:"zipCode" validate:"required"`
	Country       string `json:"country" bson:"country" validate:"required"`
}

// OrderItem is a frozen snapshot of a cart line at purchase time
type OrderItem struct {
	ProductID string `json:"productId" bson:"productId"`
	Quantity  int    `json:"quantity" bson:"quantity"`
	Size      string `json:"size" bson:"size"`
	Color     string `json:"color" bson:"color"`
	Price     int64  `json:"price" bson:"price"`
	Title     string `json:"title" bson:"title"`
	Image     string `json:"image" bson:"image"`
}

// LineTotal is price times quantity
func (i OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Order is an append-only purchase record
type Order struct {
	ID              string      `json:"id" gorm:"type:varchar(36);primaryKey" bson:"_id"`
	UserID          string      `json:"userId" gorm:"type:varchar(36);index;not null" bson:"userId"`
	Items           []OrderItem `json:"items" gorm:"type:text;serializer:json" bson:"items"`
	Subtotal        int64       `json:"subtotal" bson:"subtotal"`
	ShippingFee     int64       `json:"shippingFee" bson:"shippingFee"`
	TotalAmount     int64       `json:"totalAmount" gorm:"not null" bson:"totalAmount"`
	ShippingAddress Address     `json:"shippingAddress" gorm:"embedded;embeddedPrefix:ship_" bson:"shippingAddress"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(20);index;not null" bson:"status"`
	CreatedAt       time.Time   `json:"createdAt" gorm:"index" bson:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a deep copy
func (o Order) Clone() Order {
	out := o
	out.Items = append([]OrderItem{}, o.Items...)
	return out
}

// ShippingPolicy charges a flat fee below a free-shipping threshold
type ShippingPolicy struct {
	FreeThreshold int64
	Fee           int64
}

// DefaultShippingPolicy is free shipping from $100.00, $5.99 otherwise
var DefaultShippingPolicy = ShippingPolicy{FreeThreshold: 10000, Fee: 599}

// FeeFor returns the shipping fee charged for subtotal
func (p ShippingPolicy) FeeFor(subtotal int64) int64 {
	if subtotal >= p.FreeThreshold {
		return 0
	}
	return p.Fee
}

// Subtotal sums the line totals of items
func Subtotal(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}
