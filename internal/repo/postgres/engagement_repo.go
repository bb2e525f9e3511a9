package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
)

// EngagementRepo runs stat mutations under row locks so two concurrent
// engagement writes on the same listing cannot lose each other's
// update.
type EngagementRepo struct {
	pool *pgxpool.Pool
}

func NewEngagementRepo(pool *pgxpool.Pool) *EngagementRepo {
	return &EngagementRepo{pool: pool}
}

// Mutate locks the listing and actor rows, applies fn to the in-memory
// pair, and persists the stat columns and the actor's bookmarks when
// fn reports a change.
func (r *EngagementRepo) Mutate(
	ctx context.Context,
	kind model.ListingKind,
	listingID, actorID uuid.UUID,
	fn func(*model.Listing, *model.User) (bool, error),
) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if fn == nil {
		return fmt.Errorf("engagement mutation is nil")
	}

	return WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		listing, err := lockListing(txCtx, tx, kind, listingID)
		if err != nil {
			return err
		}

		actor, err := lockUser(txCtx, tx, actorID)
		if err != nil {
			return err
		}

		changed, err := fn(&listing, &actor)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		if _, err := tx.Exec(txCtx, `
UPDATE listings SET
	viewed = $2,
	interested = $3,
	going = $4,
	bookmarked = $5
WHERE id = $1
`,
			listing.ID,
			listing.Stats.Viewed,
			listing.Stats.Interested,
			listing.Stats.Going,
			listing.Stats.Bookmarked,
		); err != nil {
			return fmt.Errorf("update listing stats: %w", err)
		}

		if _, err := tx.Exec(txCtx, `
UPDATE users SET bookmarked = $2
WHERE id = $1
`, actor.ID, actor.Bookmarked); err != nil {
			return fmt.Errorf("update user bookmarks: %w", err)
		}

		return nil
	})
}

func lockListing(ctx context.Context, tx pgx.Tx, kind model.ListingKind, id uuid.UUID) (model.Listing, error) {
	row := tx.QueryRow(ctx, `
SELECT `+listingColumns+`
FROM listings
WHERE id = $1 AND kind = $2 AND deleted_at IS NULL
FOR UPDATE
`, id, string(kind))

	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Listing{}, ErrListingNotFound
		}
		return model.Listing{}, fmt.Errorf("lock listing: %w", err)
	}

	return listing, nil
}

func lockUser(ctx context.Context, tx pgx.Tx, id uuid.UUID) (model.User, error) {
	row := tx.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1 AND deleted_at IS NULL
FOR UPDATE
`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("lock user: %w", err)
	}

	return user, nil
}
