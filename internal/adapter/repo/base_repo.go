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

// BaseRepositoryPG implements domain.BaseRepository using PostgreSQL.
type BaseRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewBaseRepository constructs a new base repository instance.
func NewBaseRepository(sql infra.SQLExecutor) *BaseRepositoryPG {
	return &BaseRepositoryPG{sql: sql}
}

// List returns every base ordered by title.
func (r *BaseRepositoryPG) List(ctx context.Context) ([]domain.Base, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListBases)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bases []domain.Base
	for rows.Next() {
		base, err := scanBase(rows)
		if err != nil {
			return nil, err
		}
		bases = append(bases, *base)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bases, nil
}

// Get fetches a base by title.
func (r *BaseRepositoryPG) Get(ctx context.Context, title string) (*domain.Base, error) {
	base, err := scanBase(r.sql.QueryRow(ctx, sqlinline.QSelectBase, title))
	if err != nil {
		return nil, mapError(err)
	}
	return base, nil
}

// Upsert inserts or replaces a base.
func (r *BaseRepositoryPG) Upsert(ctx context.Context, base *domain.Base) error {
	slots := base.Products
	if slots == nil {
		slots = []domain.ProductSlot{}
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode base slots: %w", err)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertBase, base.Title, base.File, raw)
	return mapError(row.Scan(&base.CreatedAt, &base.UpdatedAt))
}

// Delete removes a base; offer types bound to it cascade.
func (r *BaseRepositoryPG) Delete(ctx context.Context, title string) error {
	return affected(r.sql.Exec(ctx, sqlinline.QDeleteBase, title))
}

func scanBase(row pgx.Row) (*domain.Base, error) {
	var base domain.Base
	var slots []byte
	if err := row.Scan(&base.Title, &base.File, &slots, &base.CreatedAt, &base.UpdatedAt); err != nil {
		return nil, err
	}
	if len(slots) > 0 {
		if err := json.Unmarshal(slots, &base.Products); err != nil {
			return nil, fmt.Errorf("decode slots of base %q: %w", base.Title, err)
		}
	}
	return &base, nil
}

var _ domain.BaseRepository = (*BaseRepositoryPG)(nil)
