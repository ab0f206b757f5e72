package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/affiliate_commission_app/internal/apperrors"
	"github.com/SscSPs/affiliate_commission_app/internal/core/domain"
	portsrepo "github.com/SscSPs/affiliate_commission_app/internal/core/ports/repositories"
)

const linkColumns = `link_id, user_id, link_code, clicks, conversions, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxAffiliateLinkRepository struct {
	pool *pgxpool.Pool
}

// NewPgxAffiliateLinkRepository creates a new repository for affiliate links.
func NewPgxAffiliateLinkRepository(pool *pgxpool.Pool) portsrepo.AffiliateLinkRepositoryFacade {
	return &PgxAffiliateLinkRepository{pool: pool}
}

func scanLink(row pgx.Row) (*domain.AffiliateLink, error) {
	var link domain.AffiliateLink
	err := row.Scan(
		&link.LinkID,
		&link.UserID,
		&link.LinkCode,
		&link.Clicks,
		&link.Conversions,
		&link.IsActive,
		&link.CreatedAt,
		&link.CreatedBy,
		&link.LastUpdatedAt,
		&link.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// SaveLink persists a new affiliate link.
func (r *PgxAffiliateLinkRepository) SaveLink(ctx context.Context, link domain.AffiliateLink) error {
	query := `
		INSERT INTO affiliate_links (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		link.LinkID,
		link.UserID,
		link.LinkCode,
		link.Clicks,
		link.Conversions,
		link.IsActive,
		link.CreatedAt,
		link.CreatedBy,
		link.LastUpdatedAt,
		link.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("link insert conflict: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert link %s: %w", link.LinkID, err)
	}
	return nil
}

// IncrementClicks adds one to a link's click counter as an atomic SQL add.
func (r *PgxAffiliateLinkRepository) IncrementClicks(ctx context.Context, linkID string) error {
	query := `UPDATE affiliate_links SET clicks = clicks + 1 WHERE link_id = $1;`
	tag, err := r.pool.Exec(ctx, query, linkID)
	if err != nil {
		return fmt.Errorf("failed to increment clicks for link %s: %w", linkID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindLinkByID retrieves a link by its ID.
func (r *PgxAffiliateLinkRepository) FindLinkByID(ctx context.Context, linkID string) (*domain.AffiliateLink, error) {
	query := `SELECT ` + linkColumns + ` FROM affiliate_links WHERE link_id = $1;`
	link, err := scanLink(r.pool.QueryRow(ctx, query, linkID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find link by ID %s: %w", linkID, err)
	}
	return link, nil
}

// FindLinkByCode retrieves a link by its unique code.
func (r *PgxAffiliateLinkRepository) FindLinkByCode(ctx context.Context, code string) (*domain.AffiliateLink, error) {
	query := `SELECT ` + linkColumns + ` FROM affiliate_links WHERE link_code = $1;`
	link, err := scanLink(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find link by code: %w", err)
	}
	return link, nil
}

// FindLinksByUserID retrieves all links owned by a user.
func (r *PgxAffiliateLinkRepository) FindLinksByUserID(ctx context.Context, userID string) ([]domain.AffiliateLink, error) {
	query := `SELECT ` + linkColumns + ` FROM affiliate_links WHERE user_id = $1 ORDER BY created_at ASC;`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query links for user %s: %w", userID, err)
	}
	defer rows.Close()

	links := []domain.AffiliateLink{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link row: %w", err)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating link rows: %w", err)
	}
	return links, nil
}
