package handler

import (
	"net/http"

	"github.com/artenioreis/loja-caixa/internal/dto"
	"github.com/artenioreis/loja-caixa/internal/middleware"
	"github.com/artenioreis/loja-caixa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TillHandler struct{ svc service.TillService }

func NewTillHandler(svc service.TillService) *TillHandler { return &TillHandler{svc: svc} }

func operatorID(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return id
}

// Open godoc
// @Summary      Open a till session
// @Description  Starts the operator's drawer with a counted opening float. One open session per operator.
// @Tags         till
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.OpenTillRequest true "Opening cash"
// @Success      201  {object} dto.TillSessionResponse
// @Failure      409  {object} apperr.Error
// @Router       /v1/till/open [post]
func (h *TillHandler) Open(c *gin.Context) {
	var req dto.OpenTillRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Open(c.Request.Context(), operatorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary      Close the open till session
// @Description  Fixes the closing instant, sums the window's sales and reconciles declared against expected cash.
// @Tags         till
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CloseTillRequest true "Declared (counted) cash"
// @Success      200  {object} dto.CloseTillResponse
// @Failure      409  {object} apperr.Error
// @Router       /v1/till/close [post]
func (h *TillHandler) Close(c *gin.Context) {
	var req dto.CloseTillRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), operatorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Current godoc
// @Summary      Get the operator's open till session
// @Tags         till
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.TillSessionResponse
// @Failure      404 {object} apperr.Error
// @Router       /v1/till/current [get]
func (h *TillHandler) Current(c *gin.Context) {
	resp, err := h.svc.Current(c.Request.Context(), operatorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reconciliation godoc
// @Summary      Re-read the reconciliation of a till session
// @Description  Idempotent: closed sessions always reproduce the figures reported at close time.
// @Tags         till
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session UUID"
// @Success      200 {object} dto.CloseTillResponse
// @Failure      404 {object} apperr.Error
// @Router       /v1/till/sessions/{id} [get]
func (h *TillHandler) Reconciliation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Reconciliation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StatusBoard godoc
// @Summary      Till status of every active operator
// @Description  Admin oversight board: open / closed / never-opened per operator, with variances for closed sessions.
// @Tags         till
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.OperatorTillStatus
// @Router       /v1/till/status [get]
func (h *TillHandler) StatusBoard(c *gin.Context) {
	resp, err := h.svc.StatusBoard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
