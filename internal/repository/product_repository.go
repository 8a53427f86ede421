package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pos-sync-server/internal/domain"

	"github.com/google/uuid"
)

type ProductRepository interface {
	// Create persists the product and its outbox item in one transaction.
	Create(ctx context.Context, product *domain.Product) error
	// Update applies the patch, bumps version by 1, resets sync status to
	// PENDING and enqueues a new outbox item, all in one transaction.
	Update(ctx context.Context, accountID, id string, patch *domain.UpdateProductRequest) (*domain.Product, error)
	FindByID(ctx context.Context, accountID, id string) (*domain.Product, error)
	// FindAnyByID is the resolver's unscoped lookup by entity id.
	FindAnyByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, accountID string) ([]*domain.Product, error)
	Delete(ctx context.Context, accountID, id string) error
	// MarkSynced flips sync_status to SYNCED only while the row is still at
	// the given version; a concurrent update that already bumped the version
	// keeps its PENDING status.
	MarkSynced(ctx context.Context, id string, version int64) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin create transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (id, account_id, sku, name, category, cost_price, selling_price, quantity, status, version, sync_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.AccountID, p.SKU, p.Name, p.Category, p.CostPrice, p.SellingPrice, p.Quantity, p.Status, p.Version, p.SyncStatus, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if err := enqueueTx(ctx, tx, domain.EntityTypeProduct, p.ID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *productRepository) Update(ctx context.Context, accountID, id string, patch *domain.UpdateProductRequest) (*domain.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin update transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := scanProduct(tx.QueryRowContext(ctx, selectProduct+` WHERE account_id = ? AND id = ?`, accountID, id))
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		current.Name = *patch.Name
	}
	if patch.Category != nil {
		current.Category = *patch.Category
	}
	if patch.CostPrice != nil {
		current.CostPrice = *patch.CostPrice
	}
	if patch.SellingPrice != nil {
		current.SellingPrice = *patch.SellingPrice
	}
	if patch.Quantity != nil {
		current.Quantity = *patch.Quantity
	}
	if patch.Status != nil {
		current.Status = *patch.Status
	}

	current.Version++
	current.SyncStatus = domain.SyncStatusPending
	current.UpdatedAt = time.Now()

	res, err := tx.ExecContext(ctx, `
		UPDATE products SET name = ?, category = ?, cost_price = ?, selling_price = ?, quantity = ?, status = ?, version = ?, sync_status = ?, updated_at = ?
		WHERE account_id = ? AND id = ?
	`, current.Name, current.Category, current.CostPrice, current.SellingPrice, current.Quantity, current.Status, current.Version, current.SyncStatus, current.UpdatedAt.UTC(), accountID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	if err := enqueueTx(ctx, tx, domain.EntityTypeProduct, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return current, nil
}

const selectProduct = `
	SELECT id, account_id, sku, name, category, cost_price, selling_price, quantity, status, version, sync_status, created_at, updated_at
	FROM products`

func (r *productRepository) FindByID(ctx context.Context, accountID, id string) (*domain.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, selectProduct+` WHERE account_id = ? AND id = ?`, accountID, id))
}

func (r *productRepository) FindAnyByID(ctx context.Context, id string) (*domain.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, selectProduct+` WHERE id = ?`, id))
}

func (r *productRepository) List(ctx context.Context, accountID string) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, selectProduct+` WHERE account_id = ? ORDER BY updated_at DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProductRows(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *productRepository) Delete(ctx context.Context, accountID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE account_id = ? AND id = ?`, accountID, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) MarkSynced(ctx context.Context, id string, version int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE products SET sync_status = ? WHERE id = ? AND version = ?`, domain.SyncStatusSynced, id, version)
	if err != nil {
		return fmt.Errorf("failed to mark product synced: %w", err)
	}
	// Zero rows means an update raced in and bumped the version; its own
	// outbox item will settle the newer state.
	return nil
}

func enqueueTx(ctx context.Context, tx *sql.Tx, entityType domain.EntityType, entityID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO outbox (id, entity_type, entity_id, operation, created_at, attempt_count)
		VALUES (?, ?, ?, ?, ?, 0)
	`, uuid.New().String(), entityType, entityID, domain.OperationUpsert, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox item: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row *sql.Row) (*domain.Product, error) {
	p, err := scanProductRows(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

func scanProductRows(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.AccountID, &p.SKU, &p.Name, &p.Category, &p.CostPrice, &p.SellingPrice, &p.Quantity, &p.Status, &p.Version, &p.SyncStatus, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
