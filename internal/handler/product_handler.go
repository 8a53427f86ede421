package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/middleware"
	"pos-sync-server/internal/repository"
	"pos-sync-server/internal/service"
	"pos-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type ProductHandler struct {
	service  *service.ProductService
	validate *validator.Validate
}

func NewProductHandler(service *service.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	identity := middleware.GetIdentity(r)

	product, err := h.service.Create(r.Context(), identity.AccountID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create product")
		return
	}

	response.Created(w, product)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)

	products, err := h.service.List(r.Context(), identity.AccountID)
	if err != nil {
		response.InternalError(w, "Failed to list products")
		return
	}

	response.Success(w, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["id"]
	if productID == "" {
		response.BadRequest(w, "Product ID is required")
		return
	}

	identity := middleware.GetIdentity(r)

	product, err := h.service.Get(r.Context(), identity.AccountID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Product not found")
			return
		}
		response.InternalError(w, "Failed to get product")
		return
	}

	response.Success(w, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["id"]
	if productID == "" {
		response.BadRequest(w, "Product ID is required")
		return
	}

	var req domain.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	identity := middleware.GetIdentity(r)

	product, err := h.service.Update(r.Context(), identity.AccountID, productID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Product not found")
			return
		}
		response.InternalError(w, "Failed to update product")
		return
	}

	response.Success(w, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["id"]
	if productID == "" {
		response.BadRequest(w, "Product ID is required")
		return
	}

	identity := middleware.GetIdentity(r)

	if err := h.service.Delete(r.Context(), identity.AccountID, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Product not found")
			return
		}
		response.InternalError(w, "Failed to delete product")
		return
	}

	response.Success(w, map[string]string{"message": "Product deleted"})
}
