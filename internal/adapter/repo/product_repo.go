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

// ProductRepositoryPG implements domain.ProductRepository using PostgreSQL.
type ProductRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewProductRepository constructs a new product repository instance.
func NewProductRepository(sql infra.SQLExecutor) *ProductRepositoryPG {
	return &ProductRepositoryPG{sql: sql}
}

// List returns every product ordered by group and position.
func (r *ProductRepositoryPG) List(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, sqlinline.QListProducts)
}

// GetMany returns the products with the given ids, in no particular order.
// Unknown ids are silently absent from the result.
func (r *ProductRepositoryPG) GetMany(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, sqlinline.QSelectProductsByIDs, ids)
}

// Upsert inserts or replaces a product.
func (r *ProductRepositoryPG) Upsert(ctx context.Context, product *domain.Product) error {
	values := product.Values
	if values == nil {
		values = map[string]string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode product values: %w", err)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertProduct,
		product.ID,
		product.Title,
		raw,
		product.OfferType,
		product.Group,
		product.Position,
	)
	return mapError(row.Scan(&product.CreatedAt, &product.UpdatedAt))
}

// Delete removes a product.
func (r *ProductRepositoryPG) Delete(ctx context.Context, id string) error {
	return affected(r.sql.Exec(ctx, sqlinline.QDeleteProduct, id))
}

func (r *ProductRepositoryPG) query(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.sql.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var values []byte
	if err := row.Scan(&p.ID, &p.Title, &values, &p.OfferType, &p.Group, &p.Position, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if len(values) > 0 {
		if err := json.Unmarshal(values, &p.Values); err != nil {
			return nil, fmt.Errorf("decode values of product %q: %w", p.ID, err)
		}
	}
	return &p, nil
}

var _ domain.ProductRepository = (*ProductRepositoryPG)(nil)
