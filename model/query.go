package model

import "time"

// SupportQuery is one customer support message. Submissions are persisted and
// forwarded to the bank's admin mailbox.
type SupportQuery struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
