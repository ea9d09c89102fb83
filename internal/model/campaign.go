// internal/model/campaign.go
package model

import "time"

// Campaign statuses: draft -> scheduled -> sending -> completed.
const (
	CampaignDraft     = "draft"
	CampaignScheduled = "scheduled"
	CampaignSending   = "sending"
	CampaignCompleted = "completed"
)

type Campaign struct {
	ID           string     `db:"id" json:"id"`
	OwnerID      string     `db:"owner_id" json:"owner_id"`
	Name         string     `db:"name" json:"name"`
	Subject      string     `db:"subject" json:"subject"`
	BodyTemplate string     `db:"body_template" json:"body_template"`
	Status       string     `db:"status" json:"status"`
	CredentialID *string    `db:"credential_id" json:"credential_id,omitempty"`
	ScheduledAt  *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
