package model

import "time"

// DeliveryRecord is the ledger row tracking one recipient through a campaign
// send. Exactly one row per (campaign_id, contact_id); the version column
// backs the optimistic update that serializes writes to a single row.
type DeliveryRecord struct {
	CampaignID   string         `db:"campaign_id" json:"campaign_id"`
	ContactID    string         `db:"contact_id" json:"contact_id"`
	Status       DeliveryStatus `db:"status" json:"status"`
	MessageID    string         `db:"message_id" json:"message_id,omitempty"`
	SentAt       *time.Time     `db:"sent_at" json:"sent_at,omitempty"`
	OpenedAt     *time.Time     `db:"opened_at" json:"opened_at,omitempty"`
	ClickedAt    *time.Time     `db:"clicked_at" json:"clicked_at,omitempty"`
	ErrorMessage string         `db:"error_message" json:"error_message,omitempty"`
	Version      int            `db:"version" json:"-"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}
