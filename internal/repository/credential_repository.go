package repository

import (
	"context"
	"database/sql"
	"time"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
)

type CredentialRepositoryInterface interface {
	Create(ctx context.Context, c *model.SMTPCredential) error
	GetByID(ctx context.Context, ownerID, id string) (*model.SMTPCredential, error)
	List(ctx context.Context, ownerID string) ([]model.SMTPCredential, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type CredentialRepository struct {
	DB *sql.DB
}

func (r *CredentialRepository) Create(ctx context.Context, c *model.SMTPCredential) error {
	c.CreatedAt = time.Now()
	query := `
        INSERT INTO smtp_credentials (id, owner_id, label, host, port, username, from_address, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.OwnerID, c.Label, c.Host, c.Port, c.Username, c.FromAddress, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.NewConflict("a credential with this label already exists")
		}
		return storageErr(err)
	}
	return nil
}

func (r *CredentialRepository) GetByID(ctx context.Context, ownerID, id string) (*model.SMTPCredential, error) {
	query := `
        SELECT id, owner_id, label, host, port, username, from_address, created_at
        FROM smtp_credentials WHERE id=$1 AND owner_id=$2
    `
	var c model.SMTPCredential
	err := r.DB.QueryRowContext(ctx, query, id, ownerID).Scan(
		&c.ID, &c.OwnerID, &c.Label, &c.Host, &c.Port, &c.Username, &c.FromAddress, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storageErr(err)
	}
	return &c, nil
}

func (r *CredentialRepository) List(ctx context.Context, ownerID string) ([]model.SMTPCredential, error) {
	query := `
        SELECT id, owner_id, label, host, port, username, from_address, created_at
        FROM smtp_credentials WHERE owner_id=$1 ORDER BY created_at
    `
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	creds := []model.SMTPCredential{}
	for rows.Next() {
		var c model.SMTPCredential
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Label, &c.Host, &c.Port, &c.Username, &c.FromAddress, &c.CreatedAt); err != nil {
			return nil, storageErr(err)
		}
		creds = append(creds, c)
	}
	return creds, storageErr(rows.Err())
}

func (r *CredentialRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM smtp_credentials WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return storageErr(err)
	}
	return requireRow(res, "credential")
}

var _ CredentialRepositoryInterface = (*CredentialRepository)(nil)
