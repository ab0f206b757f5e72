package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/affiliate_commission_app/internal/apperrors"
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portsrepo "github.com/SscSPs/affiliate_commission_app/internal/core/ports/repositories"
)

const userColumns = `user_id, email, name, password_hash, role, referral_code, referrer_id, coordinator_id, tier, is_active, is_verified, created_at, created_by, last_updated_at, last_updated_by, deleted_at`

type PgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgxUserRepository creates a new repository for user data.
func NewPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.UserID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.ReferralCode,
		&user.ReferrerID,
		&user.CoordinatorID,
		&user.Tier,
		&user.IsActive,
		&user.IsVerified,
		&user.CreatedAt,
		&user.CreatedBy,
		&user.LastUpdatedAt,
		&user.LastUpdatedBy,
		&user.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SaveUserWithLink persists a new user and, when link is non-nil, the
// user's default affiliate link within the same DB transaction.
func (r *PgxUserRepository) SaveUserWithLink(ctx context.Context, user domain.User, link *domain.AffiliateLink) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // Ignore rollback error
	}()

	userQuery := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, userQuery,
		user.UserID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.ReferralCode,
		user.ReferrerID,
		user.CoordinatorID,
		user.Tier,
		user.IsActive,
		user.IsVerified,
		user.CreatedAt,
		user.CreatedBy,
		user.LastUpdatedAt,
		user.LastUpdatedBy,
		user.DeletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("user insert conflict: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user %s: %w", user.UserID, err)
	}

	if link != nil {
		linkQuery := `
			INSERT INTO affiliate_links (link_id, user_id, link_code, clicks, conversions, is_active, created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, 0, 0, $4, $5, $6, $7, $8);
		`
		_, err = tx.Exec(ctx, linkQuery,
			link.LinkID,
			link.UserID,
			link.LinkCode,
			link.IsActive,
			link.CreatedAt,
			link.CreatedBy,
			link.LastUpdatedAt,
			link.LastUpdatedBy,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("default link insert conflict: %w", apperrors.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert default link for user %s: %w", user.UserID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user registration for %s: %w", user.UserID, err)
	}
	return nil
}

// FindUserByID retrieves a user by their ID.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND deleted_at IS NULL;`
	user, err := scanUser(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}
	return user, nil
}

// FindUserByEmail retrieves a user by their unique email.
func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL;`
	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindUserByReferralCode retrieves a user by their unique referral code.
func (r *PgxUserRepository) FindUserByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE referral_code = $1 AND deleted_at IS NULL;`
	user, err := scanUser(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by referral code: %w", err)
	}
	return user, nil
}

// FindUsers retrieves a paginated list of users.
func (r *PgxUserRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL ORDER BY created_at DESC LIMIT $1 OFFSET $2;`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// UpdateUser updates an existing user's mutable details. The referral code
// and referrer_id are deliberately absent from the statement.
func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	query := `
		UPDATE users
		SET name = $2, is_active = $3, is_verified = $4, last_updated_at = $5, last_updated_by = $6
		WHERE user_id = $1 AND deleted_at IS NULL;
	`
	tag, err := r.pool.Exec(ctx, query,
		user.UserID,
		user.Name,
		user.IsActive,
		user.IsVerified,
		user.LastUpdatedAt,
		user.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateUserTier syncs the stored tier classification for a user.
func (r *PgxUserRepository) UpdateUserTier(ctx context.Context, userID string, tier domain.Tier, updatedAt time.Time) error {
	query := `UPDATE users SET tier = $2, last_updated_at = $3 WHERE user_id = $1 AND deleted_at IS NULL;`
	tag, err := r.pool.Exec(ctx, query, userID, tier, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update tier for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkUserDeleted marks a user as deleted (soft delete) and clears the
// active flag.
func (r *PgxUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	query := `
		UPDATE users
		SET deleted_at = $2, is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE user_id = $1 AND deleted_at IS NULL;
	`
	tag, err := r.pool.Exec(ctx, query, userID, deletedAt, deletedBy)
	if err != nil {
		return fmt.Errorf("failed to mark user %s deleted: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteUser hard-deletes a user. Links and commissions cascade at the
// schema level.
func (r *PgxUserRepository) DeleteUser(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1;`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
