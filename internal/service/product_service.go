package service

import (
	"context"
	"time"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/repository"

	"github.com/google/uuid"
)

// EventPublisher fans out confirmed local mutations to connected clients.
// Publishing reflects local truth immediately; it never waits for the sync
// worker.
type EventPublisher interface {
	ProductCreated(accountID string, product *domain.Product)
	ProductUpdated(accountID string, product *domain.Product)
	ProductDeleted(accountID, productID string)
}

type ProductService struct {
	repo      repository.ProductRepository
	publisher EventPublisher
}

func NewProductService(repo repository.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *ProductService) Create(ctx context.Context, accountID string, req *domain.CreateProductRequest) (*domain.Product, error) {
	now := time.Now()

	product := &domain.Product{
		ID:           uuid.New().String(),
		AccountID:    accountID,
		SKU:          req.SKU,
		Name:         req.Name,
		Category:     req.Category,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		Quantity:     req.Quantity,
		Status:       domain.ProductStatusActive,
		Version:      1,
		SyncStatus:   domain.SyncStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The repository writes the product and its outbox item as one
	// transaction; a product without a queued intent cannot exist.
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.ProductCreated(accountID, product)
	}

	return product, nil
}

func (s *ProductService) Update(ctx context.Context, accountID, id string, req *domain.UpdateProductRequest) (*domain.Product, error) {
	product, err := s.repo.Update(ctx, accountID, id, req)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.ProductUpdated(accountID, product)
	}

	return product, nil
}

func (s *ProductService) Get(ctx context.Context, accountID, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, accountID, id)
}

func (s *ProductService) List(ctx context.Context, accountID string) ([]*domain.Product, error) {
	return s.repo.List(ctx, accountID)
}

// Delete removes the product locally. Any outbox items still referencing it
// become stale intents the resolver drops without touching the remote store.
func (s *ProductService) Delete(ctx context.Context, accountID, id string) error {
	if err := s.repo.Delete(ctx, accountID, id); err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.ProductDeleted(accountID, id)
	}

	return nil
}
