// Package appointments proxies appointment booking and status management.
package appointments

// Appointment statuses as the patient service defines them.
const (
	StatusRequested = "REQUESTED"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// Appointment mirrors the patient service record. Timestamps stay as the
// upstream's local date-time strings and pass through untouched.
type Appointment struct {
	ID        int64  `json:"id,omitempty"`
	PatientID int64  `json:"patientId"`
	MedecinID int64  `json:"medecinId"`
	StartAt   string `json:"startAt"`
	EndAt     string `json:"endAt"`
	Status    string `json:"status,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// StatusUpdate changes the lifecycle state of an appointment.
type StatusUpdate struct {
	Status string `json:"status"`
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusRequested, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}
