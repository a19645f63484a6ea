// Package dossiers proxies medical records and their prescriptions.
package dossiers

import "encoding/json"

// Dossier statuses as the patient service defines them.
const (
	StatusCreated  = "CREATED"
	StatusUpdated  = "UPDATED"
	StatusArchived = "ARCHIVED"
)

// Dossier mirrors the medical record held by the patient service. The
// embedded patient stays raw; this service never interprets it.
type Dossier struct {
	ID           int64           `json:"id,omitempty"`
	CreationDate string          `json:"creationDate,omitempty"`
	Status       string          `json:"status,omitempty"`
	Antecedents  []string        `json:"antecedents,omitempty"`
	Patient      json.RawMessage `json:"patient,omitempty"`
}

// Prescription mirrors the medecin service record attached to a dossier.
type Prescription struct {
	ID           int64    `json:"id,omitempty"`
	DossierID    int64    `json:"dossierId"`
	MedecinID    int64    `json:"medecinId"`
	Medications  []string `json:"medications"`
	Instructions string   `json:"instructions,omitempty"`
	Date         string   `json:"date,omitempty"`
}
