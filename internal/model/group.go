package model

import "time"

type ContactGroup struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GroupMembership is the join row between a group and a contact.
// At most one row per (group_id, contact_id) pair.
type GroupMembership struct {
	GroupID   string    `db:"group_id" json:"group_id"`
	ContactID string    `db:"contact_id" json:"contact_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
