package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/duskraven/mailraven-backend/internal/model"
)

// DeliveryRepositoryInterface is the ledger's storage contract. Updates go
// through UpdateVersioned so two concurrent provider callbacks for the same
// record cannot race each other; different records never serialize.
type DeliveryRepositoryInterface interface {
	CreatePending(ctx context.Context, campaignID string, contactIDs []string) (int, error)
	Get(ctx context.Context, campaignID, contactID string) (*model.DeliveryRecord, error)
	UpdateVersioned(ctx context.Context, rec *model.DeliveryRecord) (bool, error)
	StatusCounts(ctx context.Context, campaignID string) (map[model.DeliveryStatus]int, error)
}

type DeliveryRepository struct {
	DB *sql.DB
}

// CreatePending inserts one pending row per contact. Pairs that already have
// a record are skipped, never reset, so re-running a send cannot overwrite
// an in-progress or terminal record.
func (r *DeliveryRepository) CreatePending(ctx context.Context, campaignID string, contactIDs []string) (int, error) {
	if len(contactIDs) == 0 {
		return 0, nil
	}
	query := `
        INSERT INTO delivery_records (campaign_id, contact_id, status, version, created_at, updated_at)
        SELECT $1, unnest($2::uuid[]), $3, 1, NOW(), NOW()
        ON CONFLICT (campaign_id, contact_id) DO NOTHING
    `
	res, err := r.DB.ExecContext(ctx, query, campaignID, pq.Array(contactIDs), model.StatusPending)
	if err != nil {
		return 0, storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr(err)
	}
	return int(n), nil
}

func (r *DeliveryRepository) Get(ctx context.Context, campaignID, contactID string) (*model.DeliveryRecord, error) {
	query := `
        SELECT campaign_id, contact_id, status, message_id, sent_at, opened_at, clicked_at,
               error_message, version, created_at, updated_at
        FROM delivery_records
        WHERE campaign_id=$1 AND contact_id=$2
    `
	var rec model.DeliveryRecord
	var status string
	err := r.DB.QueryRowContext(ctx, query, campaignID, contactID).Scan(
		&rec.CampaignID, &rec.ContactID, &status, &rec.MessageID,
		&rec.SentAt, &rec.OpenedAt, &rec.ClickedAt,
		&rec.ErrorMessage, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storageErr(err)
	}
	rec.Status = model.DeliveryStatus(status)
	return &rec, nil
}

// UpdateVersioned writes the record back only if nobody else has touched it
// since it was read. Returns false on a version conflict so the caller can
// re-read and retry.
func (r *DeliveryRepository) UpdateVersioned(ctx context.Context, rec *model.DeliveryRecord) (bool, error) {
	query := `
        UPDATE delivery_records
        SET status=$1, message_id=$2, sent_at=$3, opened_at=$4, clicked_at=$5,
            error_message=$6, version=version+1, updated_at=NOW()
        WHERE campaign_id=$7 AND contact_id=$8 AND version=$9
    `
	res, err := r.DB.ExecContext(ctx, query,
		string(rec.Status), rec.MessageID, rec.SentAt, rec.OpenedAt, rec.ClickedAt,
		rec.ErrorMessage, rec.CampaignID, rec.ContactID, rec.Version)
	if err != nil {
		return false, storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr(err)
	}
	return n > 0, nil
}

// StatusCounts aggregates the ledger for one campaign. The map is seeded so
// every status key is present even at zero; the single GROUP BY statement
// reads one consistent snapshot.
func (r *DeliveryRepository) StatusCounts(ctx context.Context, campaignID string) (map[model.DeliveryStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM delivery_records WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	counts := map[model.DeliveryStatus]int{}
	for _, st := range model.AllDeliveryStatuses {
		counts[st] = 0
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, storageErr(err)
		}
		counts[model.DeliveryStatus(status)] = count
	}
	return counts, storageErr(rows.Err())
}

var _ DeliveryRepositoryInterface = (*DeliveryRepository)(nil)
