package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/evanko/ledgerbot/internal/model"
)

// FindOrCreateUser looks up a user by external identity, creating the row on
// first contact and refreshing display attributes when they changed.
func (s *SQLiteStorage) FindOrCreateUser(ctx context.Context, identity model.Identity) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(identity.ExternalID, "externalID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, external_id, handle, first_name, last_name, created_at
		FROM users
		WHERE external_id = ?`

	var user model.User
	err := s.db.QueryRowContext(ctx, query, identity.ExternalID).Scan(
		&user.ID, &user.ExternalID, &user.Handle, &user.FirstName, &user.LastName, &user.CreatedAt,
	)

	switch {
	case err == sql.ErrNoRows:
		user = model.User{
			ID:         uuid.NewString(),
			ExternalID: identity.ExternalID,
			Handle:     identity.Handle,
			FirstName:  identity.FirstName,
			LastName:   identity.LastName,
			CreatedAt:  time.Now(),
		}
		insert := `
			INSERT INTO users (id, external_id, handle, first_name, last_name, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`
		if _, insErr := s.db.ExecContext(ctx, insert,
			user.ID, user.ExternalID, user.Handle, user.FirstName, user.LastName, user.CreatedAt,
		); insErr != nil {
			return nil, fmt.Errorf("failed to create user: %w", mapConstraintErr(insErr))
		}
		slog.Info("created user", "external_id", user.ExternalID)
		return &user, nil

	case err != nil:
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if user.Handle == identity.Handle &&
		user.FirstName == identity.FirstName &&
		user.LastName == identity.LastName {
		return &user, nil
	}

	user.Handle = identity.Handle
	user.FirstName = identity.FirstName
	user.LastName = identity.LastName

	update := `UPDATE users SET handle = ?, first_name = ?, last_name = ? WHERE id = ?`
	if _, updErr := s.db.ExecContext(ctx, update,
		user.Handle, user.FirstName, user.LastName, user.ID,
	); updErr != nil {
		return nil, fmt.Errorf("failed to refresh user attributes: %w", updErr)
	}

	slog.Debug("refreshed user attributes", "external_id", user.ExternalID)
	return &user, nil
}
