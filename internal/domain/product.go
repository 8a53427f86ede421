package domain

import "time"

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

type SyncStatus string

const (
	SyncStatusPending SyncStatus = "PENDING"
	SyncStatusSynced  SyncStatus = "SYNCED"
)

// Product is owned by the local store. Version starts at 1 on create and
// increases by exactly 1 on every local mutation; the remote mirror never
// writes back into the local row.
type Product struct {
	ID           string        `json:"id"`
	AccountID    string        `json:"account_id"`
	SKU          string        `json:"sku"`
	Name         string        `json:"name"`
	Category     string        `json:"category,omitempty"`
	CostPrice    string        `json:"cost_price"`
	SellingPrice string        `json:"selling_price"`
	Quantity     int64         `json:"quantity"`
	Status       ProductStatus `json:"status"`
	Version      int64         `json:"version"`
	SyncStatus   SyncStatus    `json:"sync_status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type CreateProductRequest struct {
	SKU          string `json:"sku" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Category     string `json:"category"`
	CostPrice    string `json:"cost_price" validate:"required"`
	SellingPrice string `json:"selling_price" validate:"required"`
	Quantity     int64  `json:"quantity" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name         *string        `json:"name"`
	Category     *string        `json:"category"`
	CostPrice    *string        `json:"cost_price"`
	SellingPrice *string        `json:"selling_price"`
	Quantity     *int64         `json:"quantity" validate:"omitempty,gte=0"`
	Status       *ProductStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}
