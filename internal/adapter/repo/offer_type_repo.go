package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"videoads/internal/domain"
	"videoads/internal/infra"
	"videoads/internal/sqlinline"
)

// OfferTypeRepositoryPG implements domain.OfferTypeRepository using PostgreSQL.
type OfferTypeRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewOfferTypeRepository constructs a new offer type repository instance.
func NewOfferTypeRepository(sql infra.SQLExecutor) *OfferTypeRepositoryPG {
	return &OfferTypeRepositoryPG{sql: sql}
}

// List returns every offer type ordered by base and title.
func (r *OfferTypeRepositoryPG) List(ctx context.Context) ([]domain.OfferType, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListOfferTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offerTypes []domain.OfferType
	for rows.Next() {
		ot, err := scanOfferType(rows)
		if err != nil {
			return nil, err
		}
		offerTypes = append(offerTypes, *ot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return offerTypes, nil
}

// Get fetches the offer type configured for base.
func (r *OfferTypeRepositoryPG) Get(ctx context.Context, title, base string) (*domain.OfferType, error) {
	ot, err := scanOfferType(r.sql.QueryRow(ctx, sqlinline.QSelectOfferType, title, base))
	if err != nil {
		return nil, mapError(err)
	}
	return ot, nil
}

// Upsert inserts or replaces an offer type.
func (r *OfferTypeRepositoryPG) Upsert(ctx context.Context, offerType *domain.OfferType) error {
	configs := offerType.Configs
	if configs == nil {
		configs = []domain.OverlayConfig{}
	}
	raw, err := json.Marshal(configs)
	if err != nil {
		return fmt.Errorf("encode offer type configs: %w", err)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertOfferType, offerType.Title, offerType.Base, raw)
	return mapError(row.Scan(&offerType.CreatedAt, &offerType.UpdatedAt))
}

// Delete removes an offer type.
func (r *OfferTypeRepositoryPG) Delete(ctx context.Context, title, base string) error {
	return affected(r.sql.Exec(ctx, sqlinline.QDeleteOfferType, title, base))
}

func scanOfferType(row pgx.Row) (*domain.OfferType, error) {
	var ot domain.OfferType
	var configs []byte
	if err := row.Scan(&ot.Title, &ot.Base, &configs, &ot.CreatedAt, &ot.UpdatedAt); err != nil {
		return nil, err
	}
	ot.Configs = []domain.OverlayConfig{}
	if len(configs) > 0 {
		if err := json.Unmarshal(configs, &ot.Configs); err != nil {
			return nil, fmt.Errorf("decode configs of offer type %q/%q: %w", ot.Base, ot.Title, err)
		}
	}
	return &ot, nil
}

var _ domain.OfferTypeRepository = (*OfferTypeRepositoryPG)(nil)
