package notify

import (
	"encoding/json"
	"time"
)

// PaymentSucceeded is published once an order is confirmed and the account
// has been upgraded to premium.
type PaymentSucceeded struct {
	OrderID   string    `json:"order_id"`
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *PaymentSucceeded) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaymentSucceededFromJSON creates a message from JSON bytes
func PaymentSucceededFromJSON(data []byte) (*PaymentSucceeded, error) {
	var msg PaymentSucceeded
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
