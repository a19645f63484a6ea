// Package patients proxies the patient service records.
package patients

// Adresse is a postal address.
type Adresse struct {
	Rue        string `json:"rue"`
	Ville      string `json:"ville"`
	CodePostal string `json:"codePostal"`
	Pays       string `json:"pays"`
}

// ProfileInfo groups the demographic details of a patient.
type ProfileInfo struct {
	DateNaissance string  `json:"dateNaissance,omitempty"`
	Adresse       Adresse `json:"adresse"`
	Telephone     string  `json:"telephone,omitempty"`
}

// Patient mirrors the patient service record. UserID links back to the
// identity provider account.
type Patient struct {
	ID               int64       `json:"id,omitempty"`
	UserID           string      `json:"userId,omitempty"`
	Nom              string      `json:"nom"`
	Prenom           string      `json:"prenom"`
	Email            string      `json:"email"`
	Role             string      `json:"role,omitempty"`
	Gender           string      `json:"gender,omitempty"`
	EmergencyContact string      `json:"emergencyContact,omitempty"`
	Profile          ProfileInfo `json:"profile"`
}
