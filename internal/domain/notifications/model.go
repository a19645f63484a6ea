// Package notifications proxies per-user notifications and the outbound
// email endpoint, and runs the background poller that keeps an eye on the
// notification feed.
package notifications

// Notification mirrors the notification service record.
type Notification struct {
	ID        int64  `json:"id,omitempty"`
	UserID    int64  `json:"userId"`
	Message   string `json:"message"`
	Type      string `json:"type,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// EmailRequest is the payload of the send-email pass-through.
type EmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
