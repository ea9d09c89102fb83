package repository

import (
	"context"
	"database/sql"
	"time"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
)

// GroupRepositoryInterface defines the group and membership queries used by
// services. MemberIDs is the explicit relation load the segment resolver
// builds on.
type GroupRepositoryInterface interface {
	Create(ctx context.Context, g *model.ContactGroup) error
	GetByID(ctx context.Context, ownerID, id string) (*model.ContactGroup, error)
	List(ctx context.Context, ownerID string) ([]model.ContactGroup, error)
	Rename(ctx context.Context, ownerID, id, name string) error
	Delete(ctx context.Context, ownerID, id string) error
	AddMember(ctx context.Context, ownerID, groupID, contactID string) error
	RemoveMember(ctx context.Context, ownerID, groupID, contactID string) error
	MemberIDs(ctx context.Context, ownerID, groupID string) ([]string, error)
}

type GroupRepository struct {
	DB *sql.DB
}

func (r *GroupRepository) Create(ctx context.Context, g *model.ContactGroup) error {
	g.CreatedAt = time.Now()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO contact_groups (id, owner_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		g.ID, g.OwnerID, g.Name, g.CreatedAt)
	return storageErr(err)
}

func (r *GroupRepository) GetByID(ctx context.Context, ownerID, id string) (*model.ContactGroup, error) {
	var g model.ContactGroup
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, owner_id, name, created_at FROM contact_groups WHERE id=$1 AND owner_id=$2`,
		id, ownerID).Scan(&g.ID, &g.OwnerID, &g.Name, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storageErr(err)
	}
	return &g, nil
}

func (r *GroupRepository) List(ctx context.Context, ownerID string) ([]model.ContactGroup, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, owner_id, name, created_at FROM contact_groups WHERE owner_id=$1 ORDER BY created_at`,
		ownerID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	groups := []model.ContactGroup{}
	for rows.Next() {
		var g model.ContactGroup
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.CreatedAt); err != nil {
			return nil, storageErr(err)
		}
		groups = append(groups, g)
	}
	return groups, storageErr(rows.Err())
}

func (r *GroupRepository) Rename(ctx context.Context, ownerID, id, name string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE contact_groups SET name=$1 WHERE id=$2 AND owner_id=$3`, name, id, ownerID)
	if err != nil {
		return storageErr(err)
	}
	return requireRow(res, "group")
}

// Delete removes the group; memberships cascade at the schema level.
func (r *GroupRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM contact_groups WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return storageErr(err)
	}
	return requireRow(res, "group")
}

// AddMember inserts the membership edge only when both endpoints belong to
// the owner, so foreign ids read as "not found" rather than "forbidden".
func (r *GroupRepository) AddMember(ctx context.Context, ownerID, groupID, contactID string) error {
	query := `
        INSERT INTO group_memberships (group_id, contact_id, created_at)
        SELECT $1, $2, NOW()
        WHERE EXISTS (SELECT 1 FROM contact_groups WHERE id=$1 AND owner_id=$3)
          AND EXISTS (SELECT 1 FROM contacts WHERE id=$2 AND owner_id=$3)
    `
	res, err := r.DB.ExecContext(ctx, query, groupID, contactID, ownerID)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.NewConflict("contact is already in this group")
		}
		return storageErr(err)
	}
	return requireRow(res, "group or contact")
}

func (r *GroupRepository) RemoveMember(ctx context.Context, ownerID, groupID, contactID string) error {
	query := `
        DELETE FROM group_memberships m
        USING contact_groups g
        WHERE m.group_id = g.id AND m.group_id=$1 AND m.contact_id=$2 AND g.owner_id=$3
    `
	res, err := r.DB.ExecContext(ctx, query, groupID, contactID, ownerID)
	if err != nil {
		return storageErr(err)
	}
	return requireRow(res, "membership")
}

// MemberIDs resolves the contacts in a group. Unknown or foreign group ids
// yield an empty set, not an error.
func (r *GroupRepository) MemberIDs(ctx context.Context, ownerID, groupID string) ([]string, error) {
	query := `
        SELECT m.contact_id
        FROM group_memberships m
        JOIN contact_groups g ON g.id = m.group_id
        WHERE m.group_id=$1 AND g.owner_id=$2
    `
	rows, err := r.DB.QueryContext(ctx, query, groupID, ownerID)
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

func requireRow(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return appErrors.NewNotFound(resource)
	}
	return nil
}

var _ GroupRepositoryInterface = (*GroupRepository)(nil)
