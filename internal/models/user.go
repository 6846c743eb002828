package models

import "time"

// User is a known customer of the shop. IDs come from the chat front end
// and are treated as opaque stable identifiers.
type User struct {
	ID            string    `json:"id"`
	DisplayName   string    `json:"display_name"`
	InvitedBy     *string   `json:"invited_by,omitempty"`
	JoinedChannel bool      `json:"joined_channel"`
	RegisteredAt  time.Time `json:"registered_at"`
}
