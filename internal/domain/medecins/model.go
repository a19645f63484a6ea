// Package medecins proxies the physician directory and planning data.
package medecins

// Medecin mirrors the medecin service record.
type Medecin struct {
	ID           int64  `json:"id,omitempty"`
	UserID       int64  `json:"userId,omitempty"`
	Nom          string `json:"nom"`
	Prenom       string `json:"prenom"`
	Email        string `json:"email"`
	Role         string `json:"role,omitempty"`
	Specialite   string `json:"specialite,omitempty"`
	HospitalName string `json:"hospitalName,omitempty"`
	Department   string `json:"department,omitempty"`
	IsAvailable  bool   `json:"isAvailable"`
}

// Planning is one availability slot of a physician's schedule.
type Planning struct {
	ID          int64  `json:"id,omitempty"`
	MedecinID   int64  `json:"medecinId"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	IsAvailable bool   `json:"isAvailable"`
}
