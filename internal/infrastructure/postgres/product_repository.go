package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, user_id, barcode, name, cost_price, sale_price, stock, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.UserID, &p.Barcode, &p.Name, &p.CostPrice, &p.SalePrice, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto y completa ID y fechas.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	const query = `
		INSERT INTO products (user_id, barcode, name, cost_price, sale_price, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, p.UserID, p.Barcode, p.Name, p.CostPrice, p.SalePrice, p.Stock).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapError("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto del usuario por ID.
func (r *ProductRepo) GetByID(ctx context.Context, userID, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND user_id = $2 AND archived_at IS NULL`, id, userID))
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByBarcode obtiene un producto del usuario por código de barras.
func (r *ProductRepo) GetByBarcode(ctx context.Context, userID int64, barcode string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE user_id = $1 AND barcode = $2 AND archived_at IS NULL`, userID, barcode))
	if err != nil {
		return nil, fmt.Errorf("get product by barcode: %w", err)
	}
	return p, nil
}

// GetForUpdate lee y bloquea la fila hasta el fin de la transacción.
// Dos ventas concurrentes sobre el mismo producto quedan serializadas aquí.
func (r *ProductRepo) GetForUpdate(ctx context.Context, userID, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND user_id = $2 AND archived_at IS NULL FOR UPDATE`, id, userID))
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) GetByBarcodeForUpdate(ctx context.Context, userID int64, barcode string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE user_id = $1 AND barcode = $2 AND archived_at IS NULL FOR UPDATE`, userID, barcode))
	if err != nil {
		return nil, fmt.Errorf("get product by barcode for update: %w", err)
	}
	return p, nil
}

// Update actualiza datos descriptivos y precios. No permite modificar Stock (se maneja vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	const query = `
		UPDATE products SET barcode = $3, name = $4, cost_price = $5, sale_price = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND archived_at IS NULL
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, p.ID, p.UserID, p.Barcode, p.Name, p.CostPrice, p.SalePrice).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("update product %d: %w", p.ID, domain.ErrNotFound)
		}
		return mapError("update product", err)
	}
	return nil
}

// UpdateStock fija el stock. La CHECK (stock >= 0) de la tabla rechaza negativos.
func (r *ProductRepo) UpdateStock(ctx context.Context, id int64, stock int) error {
	_, err := r.q.Exec(ctx, `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		return mapError("update product stock", err)
	}
	return nil
}

// ListByUser lista productos del usuario por nombre con paginación.
func (r *ProductRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE user_id = $1 AND archived_at IS NULL ORDER BY name, id LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collectProducts(rows)
}

// ListAll lista productos de todos los usuarios (administración).
func (r *ProductRepo) ListAll(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE archived_at IS NULL ORDER BY user_id, name, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	return collectProducts(rows)
}

// Delete archiva el producto. La fila y su historial de movimientos se conservan;
// el código de barras queda libre para un producto nuevo.
func (r *ProductRepo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET archived_at = now(), updated_at = now()
		 WHERE id = $1 AND user_id = $2 AND archived_at IS NULL`, id, userID)
	if err != nil {
		return mapError("archive product", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("archive product %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]*entity.Product, error) {
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.UserID, &p.Barcode, &p.Name, &p.CostPrice, &p.SalePrice, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
