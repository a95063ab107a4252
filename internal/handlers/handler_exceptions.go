package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/lpgdepot/depot_backend/internal/core/ports/services"
	"github.com/lpgdepot/depot_backend/internal/dto"
	"github.com/lpgdepot/depot_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exceptionHandler handles HTTP requests for advisory exception checks.
type exceptionHandler struct {
	exceptionService portssvc.ExceptionSvcFacade
}

// newExceptionHandler creates a new exceptionHandler.
func newExceptionHandler(es portssvc.ExceptionSvcFacade) *exceptionHandler {
	return &exceptionHandler{
		exceptionService: es,
	}
}

// registerExceptionRoutes registers routes related to exception detection.
func registerExceptionRoutes(rg *gin.RouterGroup, exceptionService portssvc.ExceptionSvcFacade) {
	h := newExceptionHandler(exceptionService)

	exceptions := rg.Group("/exceptions")
	{
		exceptions.POST("/payroll-check", h.checkPayroll)
	}
}

// checkPayroll godoc
// @Summary Check payroll rows for exceptions
// @Description Runs advisory checks over a batch of payroll snapshot rows. Rows with no issues are omitted from the response.
// @Tags exceptions
// @Accept json
// @Produce json
// @Param batch body dto.CheckPayrollRequest true "Payroll rows"
// @Success 200 {array} dto.PayrollExceptionResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /exceptions/payroll-check [post]
func (h *exceptionHandler) checkPayroll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CheckPayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CheckPayroll", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	results := h.exceptionService.CheckPayroll(c.Request.Context(), req)
	c.JSON(http.StatusOK, results)
}
