package repository

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"outreach_messaging_service/internal/messaging/domain"
)

// ProfileRepository definition profile directory lookup. Display
// snapshots only; authorization never reads from here.
type ProfileRepository interface {
	FindByID(ctx context.Context, userID string) (*domain.Profile, error)
	FindByIDs(ctx context.Context, userIDs []string) (map[string]domain.Profile, error)
}

type profileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository create a ProfileRepository
func NewProfileRepository(db *pgxpool.Pool) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByID(ctx context.Context, userID string) (*domain.Profile, error) {
	row := r.db.QueryRow(ctx,
		"SELECT user_id, display_name, avatar_url, role FROM profile WHERE user_id = $1", userID)

	var (
		p      domain.Profile
		avatar sql.NullString
	)
	if err := row.Scan(&p.ID, &p.DisplayName, &avatar, &p.Role); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.AvatarURL = avatar.String
	return &p, nil
}

func (r *profileRepository) FindByIDs(ctx context.Context, userIDs []string) (map[string]domain.Profile, error) {
	rows, err := r.db.Query(ctx,
		"SELECT user_id, display_name, avatar_url, role FROM profile WHERE user_id = ANY($1)", userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make(map[string]domain.Profile, len(userIDs))
	for rows.Next() {
		var (
			p      domain.Profile
			avatar sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.DisplayName, &avatar, &p.Role); err != nil {
			return nil, err
		}
		p.AvatarURL = avatar.String
		profiles[p.ID] = p
	}
	return profiles, rows.Err()
}
