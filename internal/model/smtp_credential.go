package model

import "time"

// SMTPCredential holds the provider settings a campaign sends through. The
// password never leaves the worker process and is not part of this row's
// JSON shape.
type SMTPCredential struct {
	ID          string    `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	Label       string    `db:"label" json:"label"`
	Host        string    `db:"host" json:"host"`
	Port        int       `db:"port" json:"port"`
	Username    string    `db:"username" json:"username"`
	FromAddress string    `db:"from_address" json:"from_address"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
