package handler

import (
	"net/http"

	"github.com/artenioreis/loja-caixa/internal/apperr"
	"github.com/artenioreis/loja-caixa/internal/dto"
	"github.com/artenioreis/loja-caixa/internal/infra"
	"github.com/artenioreis/loja-caixa/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct {
	svc    service.CatalogService
	images *infra.ImageStore
}

func NewProductsHandler(svc service.CatalogService, images *infra.ImageStore) *ProductsHandler {
	return &ProductsHandler{svc: svc, images: images}
}

// Create godoc
// @Summary      Register a catalog product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateProductRequest true "New product"
// @Success      201  {object} dto.ProductResponse
// @Failure      409  {object} apperr.Error
// @Router       /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List catalog products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        name    query string false "Name substring"
// @Param        barcode query string false "Exact barcode"
// @Param        active  query string false "false | all (default: active only)"
// @Param        page    query int    false "Page (default 1)"
// @Param        limit   query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.ProductListResponse
// @Router       /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Validation("%s", err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get one product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      200 {object} dto.ProductResponse
// @Failure      404 {object} apperr.Error
// @Router       /v1/products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Product UUID"
// @Param        body body dto.UpdateProductRequest true "New product data"
// @Success      200  {object} dto.ProductResponse
// @Failure      409  {object} apperr.Error
// @Router       /v1/products/{id} [put]
func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary      Deactivate a product (soft delete)
// @Description  The row survives so historical sales keep resolving; the product just stops being sellable.
// @Tags         products
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      204
// @Failure      404 {object} apperr.Error
// @Router       /v1/products/{id} [delete]
func (h *ProductsHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reactivate godoc
// @Summary      Reactivate a deactivated product
// @Tags         products
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      204
// @Failure      404 {object} apperr.Error
// @Router       /v1/products/{id}/reactivate [post]
func (h *ProductsHandler) Reactivate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Reactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Lookup godoc
// @Summary      Resolve a scanned code for the POS screen
// @Description  Accepts a barcode or a product UUID. Inactive products are not found; out-of-stock products are rejected.
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Barcode or product UUID"
// @Success      200 {object} dto.LookupResponse
// @Failure      404 {object} apperr.Error
// @Router       /v1/products/lookup/{code} [get]
func (h *ProductsHandler) Lookup(c *gin.Context) {
	resp, err := h.svc.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search godoc
// @Summary      Typeahead search over name and barcode
// @Description  Terms shorter than two characters return an empty list.
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        q query string true "Search term"
// @Success      200 {array} dto.LookupResponse
// @Router       /v1/products/search [get]
func (h *ProductsHandler) Search(c *gin.Context) {
	resp, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LowStock godoc
// @Summary      List products at or below their minimum stock
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.ProductResponse
// @Router       /v1/products/low-stock [get]
func (h *ProductsHandler) LowStock(c *gin.Context) {
	resp, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UploadImage godoc
// @Summary      Upload the product image
// @Description  Multipart upload, field "image". Accepts png/jpg/jpeg/gif up to 5MB.
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path     string true "Product UUID"
// @Param        image formData file   true "Image file"
// @Success      200   {object} dto.ProductResponse
// @Failure      400   {object} apperr.Error
// @Router       /v1/products/{id}/image [post]
func (h *ProductsHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, apperr.Validation("missing image file"))
		return
	}
	relPath, err := h.images.Save(file)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.svc.SetImage(c.Request.Context(), id, relPath)
	if err != nil {
		// The product vanished between upload and update; drop the orphan.
		_ = h.images.Remove(relPath)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
