package repository

import (
	"context"
	"fmt"
	"net/http"

	"pos-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

// RemoteProductRepository is the resolver's view of the remote mirror. The
// mirror is only ever written by the resolver; CouchDB document revisions make
// each apply a read-check-write unit (a Put against a stale revision fails as
// a conflict, which the resolver retries on a later cycle).
type RemoteProductRepository interface {
	Find(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
}

type remoteProductRepository struct {
	client *kivik.Client
	dbName string
}

func NewRemoteProductRepository(client *kivik.Client, dbName string) RemoteProductRepository {
	return &remoteProductRepository{
		client: client,
		dbName: dbName,
	}
}

func productDocID(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (r *remoteProductRepository) Find(ctx context.Context, id string) (*domain.Product, error) {
	db := r.client.DB(r.dbName)

	row := db.Get(ctx, productDocID(id))

	var product domain.Product
	if err := row.ScanDoc(&product); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read remote product: %w", err)
	}

	return &product, nil
}

func (r *remoteProductRepository) Create(ctx context.Context, p *domain.Product) error {
	db := r.client.DB(r.dbName)

	if _, err := db.Put(ctx, productDocID(p.ID), p); err != nil {
		return fmt.Errorf("failed to create remote product: %w", err)
	}

	return nil
}

func (r *remoteProductRepository) Update(ctx context.Context, p *domain.Product) error {
	db := r.client.DB(r.dbName)
	docID := productDocID(p.ID)

	// Carry the current _rev so CouchDB rejects a concurrent apply instead
	// of silently overwriting it.
	var existing map[string]interface{}
	row := db.Get(ctx, docID)
	if err := row.ScanDoc(&existing); err != nil {
		return fmt.Errorf("failed to fetch remote product for update: %w", err)
	}

	existing["account_id"] = p.AccountID
	existing["sku"] = p.SKU
	existing["name"] = p.Name
	existing["category"] = p.Category
	existing["cost_price"] = p.CostPrice
	existing["selling_price"] = p.SellingPrice
	existing["quantity"] = p.Quantity
	existing["status"] = p.Status
	existing["version"] = p.Version
	existing["sync_status"] = p.SyncStatus
	existing["created_at"] = p.CreatedAt
	existing["updated_at"] = p.UpdatedAt

	if _, err := db.Put(ctx, docID, existing); err != nil {
		return fmt.Errorf("failed to update remote product: %w", err)
	}

	return nil
}
