package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/lpgdepot/depot_backend/internal/core/ports/services"
	"github.com/lpgdepot/depot_backend/internal/dto"
	"github.com/lpgdepot/depot_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// vatHandler handles HTTP requests for VAT settings and decomposition.
type vatHandler struct {
	vatService portssvc.VATSvcFacade
}

// newVATHandler creates a new vatHandler.
func newVATHandler(vs portssvc.VATSvcFacade) *vatHandler {
	return &vatHandler{
		vatService: vs,
	}
}

// registerVATRoutes registers routes related to VAT.
func registerVATRoutes(rg *gin.RouterGroup, vatService portssvc.VATSvcFacade) {
	h := newVATHandler(vatService)

	vat := rg.Group("/vat")
	{
		vat.GET("/settings", h.getSettings)
		vat.PUT("/settings", h.updateSettings)
		vat.POST("/decompose", h.decompose)
	}
}

// getSettings godoc
// @Summary Get VAT settings
// @Description Returns the current VAT configuration (highest version).
// @Tags vat
// @Produce json
// @Success 200 {object} dto.VATSettingsResponse
// @Failure 404 {object} ErrorResponse "Settings not configured"
// @Security BearerAuth
// @Router /vat/settings [get]
func (h *vatHandler) getSettings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	settings, err := h.vatService.GetSettings(c.Request.Context())
	if err != nil {
		logger.Warn("Failed to get VAT settings", slog.String("error", err.Error()))
		respondError(c, err, "Failed to get VAT settings")
		return
	}

	c.JSON(http.StatusOK, dto.ToVATSettingsResponse(settings))
}

// updateSettings godoc
// @Summary Update VAT settings
// @Description Writes a new settings version. Previous versions are retained so stored breakdowns stay traceable.
// @Tags vat
// @Accept json
// @Produce json
// @Param settings body dto.UpdateVATSettingsRequest true "New settings"
// @Success 200 {object} dto.VATSettingsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /vat/settings [put]
func (h *vatHandler) updateSettings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateVATSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateVATSettings", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	byUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	settings, err := h.vatService.UpdateSettings(c.Request.Context(), req, byUserID)
	if err != nil {
		logger.Warn("Failed to update VAT settings", slog.String("error", err.Error()))
		respondError(c, err, "Failed to update VAT settings")
		return
	}

	logger.Info("VAT settings updated", slog.Int("version", settings.Version))
	c.JSON(http.StatusOK, dto.ToVATSettingsResponse(settings))
}

// decompose godoc
// @Summary Decompose a VAT-inclusive amount
// @Description Splits a gross amount into net and VAT. With no explicit rate the current settings and sale date decide the rate.
// @Tags vat
// @Accept json
// @Produce json
// @Param request body dto.DecomposeRequest true "Gross amount and optional rate/date/treatment"
// @Success 200 {object} dto.VATBreakdownResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /vat/decompose [post]
func (h *vatHandler) decompose(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DecomposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Decompose", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	breakdown, err := h.vatService.Decompose(c.Request.Context(), req)
	if err != nil {
		logger.Warn("Failed to decompose amount", slog.String("error", err.Error()))
		respondError(c, err, "Failed to decompose amount")
		return
	}

	c.JSON(http.StatusOK, dto.ToVATBreakdownResponse(*breakdown))
}
