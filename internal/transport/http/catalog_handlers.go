package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appcatalog "github.com/minimart/minimart/internal/application/catalog"
	domcatalog "github.com/minimart/minimart/internal/domain/catalog"
)

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) handleCreateCategory(c *gin.Context) {
	if !h.requireAdmin(c, "category.create") {
		return
	}
	var req createCategoryRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(), appcatalog.CreateCategoryInput{Name: req.Name})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"category_id": category.ID,
		"name":        category.Name,
	})
}

type createProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"category_id"`
	Kind        string          `json:"kind" validate:"required,oneof=physical digital"`
	DownloadURL string          `json:"download_url" validate:"omitempty,url"`
}

type productResponse struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	CategoryID  string `json:"category_id,omitempty"`
	Kind        string `json:"kind"`
	DownloadURL string `json:"download_url,omitempty"`
}

func productResponseFrom(p *domcatalog.Product) productResponse {
	return productResponse{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		CategoryID:  p.CategoryID,
		Kind:        string(p.Kind),
		DownloadURL: p.DownloadURL,
	}
}

func (h *Handler) handleCreateProduct(c *gin.Context) {
	if !h.requireAdmin(c, "product.create") {
		return
	}
	var req createProductRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	product, err := h.catalog.CreateProduct(c.Request.Context(), appcatalog.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Kind:        domcatalog.Kind(req.Kind),
		DownloadURL: req.DownloadURL,
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.Header("Location", "/products/"+product.ID)
	c.JSON(http.StatusCreated, productResponseFrom(product))
}

func (h *Handler) handleListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponseFrom(p))
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

func (h *Handler) handleGetProduct(c *gin.Context) {
	product, err := h.catalog.FindProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, productResponseFrom(product))
}

type changePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

func (h *Handler) handleChangePrice(c *gin.Context) {
	if !h.requireAdmin(c, "price.change") {
		return
	}
	var req changePriceRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	product, err := h.catalog.ChangePrice(c.Request.Context(), appcatalog.ChangePriceInput{
		ProductID: c.Param("id"),
		Price:     req.Price,
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, productResponseFrom(product))
}
