package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Campaign, error)
	List(ctx context.Context, ownerID string, offset, limit int, status string) ([]*model.Campaign, int, error)
	UpdateStatus(ctx context.Context, id, status string) error
	ClaimSending(ctx context.Context, ownerID, id string) (bool, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type CampaignRepository struct {
	DB *sql.DB
}

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	query := `
        INSERT INTO campaigns (id, owner_id, name, subject, body_template, status, credential_id, scheduled_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.OwnerID, c.Name, c.Subject, c.BodyTemplate, c.Status, c.CredentialID, c.ScheduledAt, c.CreatedAt)
	return storageErr(err)
}

func (r *CampaignRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Campaign, error) {
	query := `
        SELECT id, owner_id, name, subject, body_template, status, credential_id, scheduled_at, created_at, updated_at
        FROM campaigns WHERE id=$1 AND owner_id=$2
    `
	var c model.Campaign
	err := r.DB.QueryRowContext(ctx, query, id, ownerID).Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Subject, &c.BodyTemplate, &c.Status,
		&c.CredentialID, &c.ScheduledAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("campaign")
		}
		return nil, storageErr(err)
	}
	return &c, nil
}

func (r *CampaignRepository) List(ctx context.Context, ownerID string, offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `
        SELECT id, owner_id, name, subject, body_template, status, credential_id, scheduled_at, created_at, updated_at
        FROM campaigns WHERE owner_id=$1
    `
	args := []interface{}{ownerID}
	argPos := 2

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, storageErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &model.Campaign{}
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Subject, &c.BodyTemplate, &c.Status,
			&c.CredentialID, &c.ScheduledAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, storageErr(err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageErr(err)
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE owner_id=$1`
	countArgs := []interface{}{ownerID}
	if status != "" {
		countQuery += " AND status=$2"
		countArgs = append(countArgs, status)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, storageErr(err)
	}

	return campaigns, total, nil
}

func (r *CampaignRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	return storageErr(err)
}

// ClaimSending atomically moves a draft or scheduled campaign to sending.
// Returns false when the campaign was already claimed, which is how send
// initiation stays at-most-once.
func (r *CampaignRepository) ClaimSending(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE campaigns SET status=$1, updated_at=NOW()
        WHERE id=$2 AND owner_id=$3 AND status IN ($4, $5)
    `, model.CampaignSending, id, ownerID, model.CampaignDraft, model.CampaignScheduled)
	if err != nil {
		return false, storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr(err)
	}
	return n > 0, nil
}

// Delete removes the campaign; delivery records cascade at the schema level.
func (r *CampaignRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM campaigns WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return storageErr(err)
	}
	return requireRow(res, "campaign")
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
