package models

import "time"

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// orderTransitions lists the states each status may move to
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusCompleted},
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Customer identifies who placed an order
type Customer struct {
	Name  string `json:"name" binding:"required,max=100"`
	Phone string `json:"phone" binding:"omitempty,min=6,max=20"`
	Email string `json:"email" binding:"omitempty,email"`
}

// Key returns the identifier used to look up a customer's order history
func (c Customer) Key() string {
	if c.Phone != "" {
		return c.Phone
	}
	return c.Email
}

// StatusChange records when an order entered a status
type StatusChange struct {
	Status OrderStatus `json:"status"`
	At     time.Time   `json:"at"`
}

// SyncStatus tracks the ERP mirror of an order
type SyncStatus string

const (
	SyncPending  SyncStatus = "pending"
	SyncSynced   SyncStatus = "synced"
	SyncFailed   SyncStatus = "failed"
	SyncDisabled SyncStatus = "disabled"
)

// ERPState is the best-effort ERP synchronisation state of an order
type ERPState struct {
	SyncStatus SyncStatus `json:"sync_status"`
	RemoteID   int64      `json:"remote_id,omitempty"`
	Confirmed  bool       `json:"confirmed,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
	SyncedAt   *time.Time `json:"synced_at,omitempty"`
}

// Order represents a placed customer order
type Order struct {
	ID            string         `json:"id"`
	Number        string         `json:"number"`
	Customer      Customer       `json:"customer"`
	Items         []LineItem     `json:"items"`
	Subtotal      float64        `json:"subtotal"`
	Total         float64        `json:"total"`
	Status        OrderStatus    `json:"status"`
	Notes         string         `json:"notes,omitempty"`
	PickupTime    *time.Time     `json:"pickup_time,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	StatusHistory []StatusChange `json:"status_history"`
	ERP           ERPState       `json:"erp"`
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	Status   OrderStatus `form:"status"`
	Customer string      `form:"customer"`
}

// PlaceOrderRequest is the checkout payload. Items come from CartID when set,
// otherwise from Items.
type PlaceOrderRequest struct {
	CartID     string           `json:"cart_id,omitempty"`
	Items      []AddItemRequest `json:"items,omitempty" binding:"omitempty,max=50,dive"`
	Customer   Customer         `json:"customer"`
	Notes      string           `json:"notes,omitempty" binding:"max=500"`
	PickupTime *time.Time       `json:"pickup_time,omitempty"`
}

// StatusUpdateRequest moves an order through its lifecycle
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status" binding:"required,oneof=pending confirmed preparing ready completed cancelled"`
}
