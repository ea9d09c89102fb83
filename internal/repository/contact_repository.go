package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
)

// ContactRepositoryInterface defines the contact queries used by services.
type ContactRepositoryInterface interface {
	Create(ctx context.Context, c *model.Contact) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Contact, error)
	List(ctx context.Context, ownerID string) ([]model.Contact, error)
	ListIDs(ctx context.Context, ownerID string) ([]string, error)
	UpdateAttributes(ctx context.Context, ownerID, id string, attrs map[string]string) error
	Delete(ctx context.Context, ownerID, id string) error
}

type ContactRepository struct {
	DB *sql.DB
}

func (r *ContactRepository) Create(ctx context.Context, c *model.Contact) error {
	c.CreatedAt = time.Now()
	attrs, err := marshalAttributes(c.Attributes)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO contacts (id, owner_id, email, attributes, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err = r.DB.ExecContext(ctx, query, c.ID, c.OwnerID, c.Email, attrs, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.NewConflict("a contact with this email already exists")
		}
		return storageErr(err)
	}
	return nil
}

func (r *ContactRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Contact, error) {
	query := `
        SELECT id, owner_id, email, attributes, created_at, updated_at
        FROM contacts WHERE id=$1 AND owner_id=$2
    `
	var c model.Contact
	var attrs []byte
	err := r.DB.QueryRowContext(ctx, query, id, ownerID).Scan(&c.ID, &c.OwnerID, &c.Email, &attrs, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storageErr(err)
	}
	if err := json.Unmarshal(attrs, &c.Attributes); err != nil {
		return nil, storageErr(err)
	}
	return &c, nil
}

func (r *ContactRepository) List(ctx context.Context, ownerID string) ([]model.Contact, error) {
	query := `
        SELECT id, owner_id, email, attributes, created_at, updated_at
        FROM contacts WHERE owner_id=$1 ORDER BY created_at
    `
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		var attrs []byte
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Email, &attrs, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, storageErr(err)
		}
		if err := json.Unmarshal(attrs, &c.Attributes); err != nil {
			return nil, storageErr(err)
		}
		contacts = append(contacts, c)
	}
	return contacts, storageErr(rows.Err())
}

func (r *ContactRepository) ListIDs(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM contacts WHERE owner_id=$1`, ownerID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr(err)
		}
		ids = append(ids, id)
	}
	return ids, storageErr(rows.Err())
}

func (r *ContactRepository) UpdateAttributes(ctx context.Context, ownerID, id string, attrs map[string]string) error {
	raw, err := marshalAttributes(attrs)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE contacts SET attributes=$1, updated_at=NOW() WHERE id=$2 AND owner_id=$3`,
		raw, id, ownerID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return appErrors.NewNotFound("contact")
	}
	return nil
}

// Delete removes the contact; group memberships cascade at the schema level.
func (r *ContactRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM contacts WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return appErrors.NewNotFound("contact")
	}
	return nil
}

func marshalAttributes(attrs map[string]string) ([]byte, error) {
	if attrs == nil {
		attrs = map[string]string{}
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, appErrors.NewValidation("attributes are not serializable")
	}
	return raw, nil
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
