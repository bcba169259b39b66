package ledger

import (
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	// StatusRejected marks submissions stopped before reaching OpenMRS.
	StatusRejected Status = "rejected"
)

// Entry records one write attempted against OpenMRS on behalf of a workspace.
type Entry struct {
	ID            uuid.UUID `json:"id"`
	Workspace     string    `json:"workspace"`
	PatientUUID   string    `json:"patient_uuid"`
	EncounterUUID string    `json:"encounter_uuid,omitempty"`
	ProviderUUID  string    `json:"provider_uuid,omitempty"`
	Action        Action    `json:"action"`
	Status        Status    `json:"status"`
	Error         string    `json:"error,omitempty"`
	Unmapped      []string  `json:"unmapped,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
