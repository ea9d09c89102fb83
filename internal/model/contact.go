package model

import "time"

type Contact struct {
	ID         string            `db:"id" json:"id"`
	OwnerID    string            `db:"owner_id" json:"owner_id"`
	Email      string            `db:"email" json:"email"`
	Attributes map[string]string `db:"attributes" json:"attributes"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt  *time.Time        `db:"updated_at" json:"updated_at,omitempty"`
}
