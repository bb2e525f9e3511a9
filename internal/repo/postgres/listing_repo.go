package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
)

var ErrListingNotFound = errors.New("listing not found")

const listingColumns = `
	id,
	kind,
	owner_id,
	visible,
	name,
	description,
	city,
	images,
	details,
	viewed,
	interested,
	going,
	bookmarked,
	approved_at,
	alert_sent_at,
	created_at,
	deleted_at
`

type ListingRepo struct {
	pool *pgxpool.Pool
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

// ListingPatch is a statically-typed partial update: only populated
// members become SET clauses.
type ListingPatch struct {
	Visible     *bool
	Name        *string
	Description *string
	City        *string
	Images      *[]string
	Event       *model.EventDetails
	Sale        *model.SaleDetails
}

func (p ListingPatch) empty() bool {
	return p.Visible == nil && p.Name == nil && p.Description == nil &&
		p.City == nil && p.Images == nil && p.Event == nil && p.Sale == nil
}

func (r *ListingRepo) Insert(ctx context.Context, listing *model.Listing) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if listing == nil || listing.ID == uuid.Nil {
		return fmt.Errorf("invalid listing payload")
	}

	images, err := json.Marshal(listing.Images)
	if err != nil {
		return fmt.Errorf("marshal listing images: %w", err)
	}
	details, err := marshalDetails(listing)
	if err != nil {
		return err
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO listings (
	id,
	kind,
	owner_id,
	visible,
	name,
	description,
	city,
	images,
	details,
	viewed,
	interested,
	going,
	bookmarked,
	approved_at,
	alert_sent_at,
	created_at,
	deleted_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb,
	'{}'::uuid[], '{}'::uuid[], '{}'::uuid[], '{}'::uuid[],
	$10, $11, $12, NULL
)
`,
		listing.ID,
		string(listing.Kind),
		listing.OwnerID,
		listing.Visible,
		listing.Name,
		listing.Description,
		listing.City,
		string(images),
		string(details),
		listing.ApprovedAt,
		listing.AlertSentAt,
		listing.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}

	return nil
}

// GetByID returns the listing even when it is soft-deleted; the id
// stays valid for referential lookups.
func (r *ListingRepo) GetByID(ctx context.Context, kind model.ListingKind, id uuid.UUID) (model.Listing, error) {
	if r.pool == nil {
		return model.Listing{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+listingColumns+`
FROM listings
WHERE id = $1 AND kind = $2
`, id, string(kind))

	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Listing{}, ErrListingNotFound
		}
		return model.Listing{}, fmt.Errorf("get listing by id: %w", err)
	}

	return listing, nil
}

// ListPublic returns approved, visible, non-deleted listings.
func (r *ListingRepo) ListPublic(ctx context.Context, kind model.ListingKind) ([]model.Listing, error) {
	return r.list(ctx, `
SELECT `+listingColumns+`
FROM listings
WHERE kind = $1 AND deleted_at IS NULL AND visible = TRUE AND approved_at IS NOT NULL
ORDER BY created_at DESC
`, string(kind))
}

func (r *ListingRepo) ListByOwner(ctx context.Context, kind model.ListingKind, ownerID uuid.UUID) ([]model.Listing, error) {
	return r.list(ctx, `
SELECT `+listingColumns+`
FROM listings
WHERE kind = $1 AND deleted_at IS NULL AND owner_id = $2
ORDER BY created_at DESC
`, string(kind), ownerID)
}

func (r *ListingRepo) ListByCity(ctx context.Context, kind model.ListingKind, city string) ([]model.Listing, error) {
	pattern := "%" + strings.TrimSpace(city) + "%"
	return r.list(ctx, `
SELECT `+listingColumns+`
FROM listings
WHERE kind = $1 AND deleted_at IS NULL AND visible = TRUE AND approved_at IS NOT NULL AND city ILIKE $2
ORDER BY created_at DESC
`, string(kind), pattern)
}

func (r *ListingRepo) ListUnapproved(ctx context.Context, kind model.ListingKind) ([]model.Listing, error) {
	return r.list(ctx, `
SELECT `+listingColumns+`
FROM listings
WHERE kind = $1 AND deleted_at IS NULL AND approved_at IS NULL
ORDER BY created_at ASC
`, string(kind))
}

// ListByIDs resolves a user-side id set (bookmarked, alerted) back to
// listings, skipping soft-deleted ones.
func (r *ListingRepo) ListByIDs(ctx context.Context, kind model.ListingKind, ids []uuid.UUID) ([]model.Listing, error) {
	if len(ids) == 0 {
		return []model.Listing{}, nil
	}
	return r.list(ctx, `
SELECT `+listingColumns+`
FROM listings
WHERE kind = $1 AND deleted_at IS NULL AND id = ANY($2)
ORDER BY created_at DESC
`, string(kind), ids)
}

func (r *ListingRepo) ApplyPatch(ctx context.Context, kind model.ListingKind, id uuid.UUID, patch ListingPatch) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if patch.empty() {
		return nil
	}

	sets := make([]string, 0, 7)
	args := []any{id, string(kind)}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Visible != nil {
		appendSet("visible", *patch.Visible)
	}
	if patch.Name != nil {
		appendSet("name", *patch.Name)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.City != nil {
		appendSet("city", *patch.City)
	}
	if patch.Images != nil {
		images, err := json.Marshal(*patch.Images)
		if err != nil {
			return fmt.Errorf("marshal listing images: %w", err)
		}
		appendSet("images", string(images))
	}
	if patch.Event != nil {
		details, err := json.Marshal(patch.Event)
		if err != nil {
			return fmt.Errorf("marshal event details: %w", err)
		}
		appendSet("details", string(details))
	}
	if patch.Sale != nil {
		details, err := json.Marshal(patch.Sale)
		if err != nil {
			return fmt.Errorf("marshal sale details: %w", err)
		}
		appendSet("details", string(details))
	}

	result, err := r.pool.Exec(ctx, `
UPDATE listings SET `+strings.Join(sets, ", ")+`
WHERE id = $1 AND kind = $2 AND deleted_at IS NULL
`, args...)
	if err != nil {
		return fmt.Errorf("patch listing: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrListingNotFound
	}

	return nil
}

// SetApproved stamps approved_at exactly once. Returns false when the
// listing was already approved by a concurrent or earlier call.
func (r *ListingRepo) SetApproved(ctx context.Context, kind model.ListingKind, id uuid.UUID, at time.Time) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE listings SET approved_at = $3
WHERE id = $1 AND kind = $2 AND approved_at IS NULL
`, id, string(kind), at.UTC())
	if err != nil {
		return false, fmt.Errorf("set listing approved: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// MarkAlertSent stamps alert_sent_at exactly once; the affected-row
// count is the single-use guard against duplicate fan-out.
func (r *ListingRepo) MarkAlertSent(ctx context.Context, kind model.ListingKind, id uuid.UUID, at time.Time) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE listings SET alert_sent_at = $3
WHERE id = $1 AND kind = $2 AND alert_sent_at IS NULL
`, id, string(kind), at.UTC())
	if err != nil {
		return false, fmt.Errorf("mark listing alert sent: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *ListingRepo) SoftDelete(ctx context.Context, kind model.ListingKind, id uuid.UUID, at time.Time) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE listings SET deleted_at = $3
WHERE id = $1 AND kind = $2 AND deleted_at IS NULL
`, id, string(kind), at.UTC())
	if err != nil {
		return fmt.Errorf("soft delete listing: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrListingNotFound
	}

	return nil
}

func (r *ListingRepo) ListSoftDeletedBefore(ctx context.Context, cutoff time.Time) ([]model.Listing, error) {
	return r.listAnyKind(ctx, `
SELECT `+listingColumns+`
FROM listings
WHERE deleted_at IS NOT NULL AND deleted_at < $1
ORDER BY deleted_at ASC
`, cutoff.UTC())
}

func (r *ListingRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("hard delete listing: %w", err)
	}
	return nil
}

func (r *ListingRepo) list(ctx context.Context, query string, args ...any) ([]model.Listing, error) {
	return r.listAnyKind(ctx, query, args...)
}

func (r *ListingRepo) listAnyKind(ctx context.Context, query string, args ...any) ([]model.Listing, error) {
	if r.pool == nil {
		return []model.Listing{}, nil
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	listings := make([]model.Listing, 0, 16)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, listing)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate listings: %w", rows.Err())
	}

	return listings, nil
}

func marshalDetails(listing *model.Listing) ([]byte, error) {
	switch listing.Kind {
	case model.KindEvent:
		details, err := json.Marshal(listing.Event)
		if err != nil {
			return nil, fmt.Errorf("marshal event details: %w", err)
		}
		return details, nil
	case model.KindSale:
		details, err := json.Marshal(listing.Sale)
		if err != nil {
			return nil, fmt.Errorf("marshal sale details: %w", err)
		}
		return details, nil
	default:
		return nil, fmt.Errorf("unknown listing kind %q", listing.Kind)
	}
}

func scanListing(row pgx.Row) (model.Listing, error) {
	var (
		listing model.Listing
		kind    string
		images  []byte
		details []byte
	)

	if err := row.Scan(
		&listing.ID,
		&kind,
		&listing.OwnerID,
		&listing.Visible,
		&listing.Name,
		&listing.Description,
		&listing.City,
		&images,
		&details,
		&listing.Stats.Viewed,
		&listing.Stats.Interested,
		&listing.Stats.Going,
		&listing.Stats.Bookmarked,
		&listing.ApprovedAt,
		&listing.AlertSentAt,
		&listing.CreatedAt,
		&listing.DeletedAt,
	); err != nil {
		return model.Listing{}, err
	}

	listing.Kind = model.ListingKind(kind)
	if len(images) > 0 {
		if err := json.Unmarshal(images, &listing.Images); err != nil {
			return model.Listing{}, fmt.Errorf("unmarshal listing images: %w", err)
		}
	}
	if len(details) > 0 {
		switch listing.Kind {
		case model.KindEvent:
			listing.Event = &model.EventDetails{}
			if err := json.Unmarshal(details, listing.Event); err != nil {
				return model.Listing{}, fmt.Errorf("unmarshal event details: %w", err)
			}
		case model.KindSale:
			listing.Sale = &model.SaleDetails{}
			if err := json.Unmarshal(details, listing.Sale); err != nil {
				return model.Listing{}, fmt.Errorf("unmarshal sale details: %w", err)
			}
		}
	}

	return listing, nil
}
