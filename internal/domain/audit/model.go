// Package audit exposes the security service's audit trail to security
// officers.
package audit

// Log mirrors one audit record of the security service.
type Log struct {
	ID         int64  `json:"id,omitempty"`
	Action     string `json:"action"`
	EntityType string `json:"entityType,omitempty"`
	EntityID   int64  `json:"entityId,omitempty"`
	UserID     int64  `json:"userId,omitempty"`
	Username   string `json:"username,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
	IPAddress  string `json:"ipAddress,omitempty"`
	Details    string `json:"details,omitempty"`
}
