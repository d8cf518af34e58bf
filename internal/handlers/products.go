package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rsharma/storeapi/internal/models"
	"github.com/rsharma/storeapi/internal/services"
	pkghttp "github.com/rsharma/storeapi/pkg/http"
)

// ProductServiceInterface defines the interface for catalog business logic
type ProductServiceInterface interface {
	List(ctx context.Context, page, pageSize int) (*services.ProductPage, error)
	Get(ctx context.Context, id int64) (*services.ProductResponse, error)
	Create(ctx context.Context, input services.ProductInput) (*services.ProductResponse, error)
	Update(ctx context.Context, id int64, input services.ProductInput, partial bool) (*services.ProductResponse, error)
	Delete(ctx context.Context, id int64) error
}

// ProductHandler handles catalog HTTP requests
type ProductHandler struct {
	service ProductServiceInterface
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(service ProductServiceInterface) *ProductHandler {
	return &ProductHandler{service: service}
}

// List returns one page of products. Unparseable page or page_size values fall
// back to defaults rather than erroring.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.service.List(r.Context(), page, pageSize)
	if err != nil {
		writeInternalError(w)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Products fetched successfully", result)
}

// Get returns a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeProductError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Product fetched successfully", product)
}

// Create adds a product to the catalog
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidBody(w)
		return
	}

	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.writeProductError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Product created successfully", product)
}

// Update replaces a product (PUT, all fields required)
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// PartialUpdate patches a product (PATCH, only the fields present)
func (h *ProductHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var input services.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidBody(w)
		return
	}

	product, err := h.service.Update(r.Context(), id, input, partial)
	if err != nil {
		h.writeProductError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Product updated successfully", product)
}

// Delete removes a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeProductError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Product deleted successfully", nil)
}

// productID parses the id path parameter; a non-numeric id renders 404 so the
// route behaves the same for /products/abc/ and a missing row.
func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		pkghttp.WriteFailure(w, http.StatusNotFound, "Product not found", nil)
		return 0, false
	}
	return id, true
}

func (h *ProductHandler) writeProductError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		pkghttp.WriteFailure(w, http.StatusBadRequest, "Invalid product data", verr.Fields)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteFailure(w, http.StatusNotFound, "Product not found", nil)
	default:
		writeInternalError(w)
	}
}
