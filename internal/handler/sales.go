package handler

import (
	"fmt"
	"net/http"

	"github.com/artenioreis/loja-caixa/internal/apperr"
	"github.com/artenioreis/loja-caixa/internal/dto"
	"github.com/artenioreis/loja-caixa/internal/infra"
	"github.com/artenioreis/loja-caixa/internal/middleware"
	"github.com/artenioreis/loja-caixa/internal/model"
	"github.com/artenioreis/loja-caixa/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	svc       service.CheckoutService
	storeName string
}

func NewSalesHandler(svc service.CheckoutService, storeName string) *SalesHandler {
	return &SalesHandler{svc: svc, storeName: storeName}
}

// Finalize godoc
// @Summary      Finalize a sale
// @Description  Atomic checkout: validates the cart, computes payment math and decrements stock. Requires an open till session.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.FinalizeSaleRequest true "Cart and payment"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apperr.Error
// @Failure      403  {object} apperr.Error
// @Failure      409  {object} apperr.Error
// @Router       /v1/sales [post]
func (h *SalesHandler) Finalize(c *gin.Context) {
	var req dto.FinalizeSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Finalize(c.Request.Context(), operatorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Get one sale with its items
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apperr.Error
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
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

// Cancel godoc
// @Summary      Cancel a finalized sale
// @Description  Flips the sale to cancelada and restores its stock. The row stays in the ledger.
// @Tags         sales
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      204
// @Failure      409 {object} apperr.Error
// @Router       /v1/sales/{id} [delete]
func (h *SalesHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Receipt godoc
// @Summary      Download the sale receipt as PDF
// @Tags         sales
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {file} binary
// @Failure      404 {object} apperr.Error
// @Router       /v1/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sale, err := h.svc.GetModel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	// Only the selling operator or an admin may reprint a receipt.
	claims := middleware.GetClaims(c)
	if claims.Role != model.RoleAdmin && claims.UserID != sale.UserID.String() {
		respondError(c, apperr.Precondition("receipt belongs to another operator"))
		return
	}
	data, err := infra.GenerateReceiptPDF(sale, h.storeName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=receipt_%s.pdf", sale.Number))
	c.Data(http.StatusOK, "application/pdf", data)
}
