package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is a closed enumeration. The upstream API accepted any
// string here; transitions are now guarded by a fixed table.
type OrderStatus string

const (
	StatusNotProcess OrderStatus = "Not Process"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusNotProcess: {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransition reports whether the status may move to next.
// Delivered and Cancelled are terminal.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentResult records the gateway outcome captured at checkout.
type PaymentResult struct {
	Success       bool    `bson:"success" json:"success"`
	TransactionID string  `bson:"transaction_id" json:"transaction_id"`
	Amount        float64 `bson:"amount" json:"amount"`
	Message       string  `bson:"message,omitempty" json:"message,omitempty"`
}

type Order struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id,omitempty"`
	Products  []primitive.ObjectID `bson:"products" json:"products"`
	Payment   PaymentResult        `bson:"payment" json:"payment"`
	Buyer     primitive.ObjectID   `bson:"buyer" json:"buyer"`
	Status    OrderStatus          `bson:"status" json:"status"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updated_at"`
}

func (Order) CollectionName() string {
	return "orders"
}
