package messages

import "time"

// OrderDispatched is published after every confirmed provider send, manual
// or periodic.
type OrderDispatched struct {
	OrderID  string    `json:"order_id"` // public identifier
	Provider string    `json:"provider"`
	SentAt   time.Time `json:"sent_at"`
}
