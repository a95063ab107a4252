package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lpgdepot/depot_backend/internal/core/domain"
	portssvc "github.com/lpgdepot/depot_backend/internal/core/ports/services"
	"github.com/lpgdepot/depot_backend/internal/dto"
	"github.com/lpgdepot/depot_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// turnoverHandler handles HTTP requests for turnover reconciliation.
type turnoverHandler struct {
	turnoverService portssvc.TurnoverSvcFacade
}

// newTurnoverHandler creates a new turnoverHandler.
func newTurnoverHandler(ts portssvc.TurnoverSvcFacade) *turnoverHandler {
	return &turnoverHandler{
		turnoverService: ts,
	}
}

// registerTurnoverRoutes registers routes related to turnover reconciliation.
func registerTurnoverRoutes(rg *gin.RouterGroup, turnoverService portssvc.TurnoverSvcFacade) {
	h := newTurnoverHandler(turnoverService)

	turnovers := rg.Group("/turnovers")
	{
		turnovers.POST("/expected", h.registerExpected)
		turnovers.POST("/cash", h.recordCash)
		turnovers.POST("/verify-cashless", h.verifyCashless)
		turnovers.POST("/save", h.saveTurnover)
		turnovers.POST("/flag", h.setFlag)
		turnovers.GET("", h.listTurnovers)
		turnovers.GET("/:date/:cashierID", h.getTurnover)
		turnovers.GET("/:date/:cashierID/cashless", h.listCashless)
	}

	rg.POST("/daily-close", h.closeDay)
}

// turnoverKeyFromPath parses the (business date, cashier) key from path params.
func turnoverKeyFromPath(c *gin.Context) (domain.TurnoverKey, bool) {
	businessDate, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid business date, expected YYYY-MM-DD"})
		return domain.TurnoverKey{}, false
	}
	return domain.TurnoverKey{
		BusinessDate:  businessDate,
		CashierUserID: c.Param("cashierID"),
	}, true
}

// registerExpected godoc
// @Summary Register expected turnover amounts
// @Description Creates or refreshes the pending turnover record for a (business date, cashier) key with amounts computed by upstream sales aggregation.
// @Tags turnovers
// @Accept json
// @Produce json
// @Param expected body dto.RegisterExpectedRequest true "Expected amounts and cashless transactions"
// @Success 200 {object} dto.TurnoverRowResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Business date already finalized"
// @Security BearerAuth
// @Router /turnovers/expected [post]
func (h *turnoverHandler) registerExpected(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterExpectedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegisterExpected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	byUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	row, err := h.turnoverService.RegisterExpected(c.Request.Context(), req, byUserID)
	if err != nil {
		logger.Warn("Failed to register expected turnover",
			slog.String("business_date", req.BusinessDate),
			slog.String("cashier_user_id", req.CashierUserID),
			slog.String("error", err.Error()))
		respondError(c, err, "Failed to register expected turnover")
		return
	}

	c.JSON(http.StatusOK, row)
}

// recordCash godoc
// @Summary Record counted cash
// @Description Records the cash an accountant counted for a turnover key. A note of at least 3 characters is required when the count differs from the expected cash.
// @Tags turnovers
// @Accept json
// @Produce json
// @Param cash body dto.RecordCashRequest true "Counted cash and optional note"
// @Success 200 {object} dto.TurnoverRowResponse
// @Failure 400 {object} ErrorResponse "Invalid input or missing variance note"
// @Failure 404 {object} ErrorResponse "No turnover record for this key"
// @Failure 409 {object} ErrorResponse "Business date already finalized"
// @Security BearerAuth
// @Router /turnovers/cash [post]
func (h *turnoverHandler) recordCash(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordCash", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	accountantUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	row, err := h.turnoverService.RecordCash(c.Request.Context(), req, accountantUserID)
	if err != nil {
		logger.Warn("Failed to record counted cash",
			slog.String("business_date", req.BusinessDate),
			slog.String("cashier_user_id", req.CashierUserID),
			slog.String("error", err.Error()))
		respondError(c, err, "Failed to record counted cash")
		return
	}

	c.JSON(http.StatusOK, row)
}

// verifyCashless godoc
// @Summary Verify cashless transactions
// @Description Verifies a batch of cashless transactions for a turnover key. Verification is monotonic; re-verifying is a no-op reported per id.
// @Tags turnovers
// @Accept json
// @Produce json
// @Param batch body dto.VerifyCashlessRequest true "Transaction ids to verify"
// @Success 200 {object} dto.VerifyCashlessResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Business date already finalized"
// @Security BearerAuth
// @Router /turnovers/verify-cashless [post]
func (h *turnoverHandler) verifyCashless(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.VerifyCashlessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for VerifyCashless", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	byUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	result, err := h.turnoverService.VerifyCashless(c.Request.Context(), req, byUserID)
	if err != nil {
		logger.Warn("Failed to verify cashless transactions",
			slog.String("business_date", req.BusinessDate),
			slog.String("cashier_user_id", req.CashierUserID),
			slog.String("error", err.Error()))
		respondError(c, err, "Failed to verify cashless transactions")
		return
	}

	c.JSON(http.StatusOK, result)
}

// saveTurnover godoc
// @Summary Save a turnover record
// @Description Finalizes a turnover record once cash is recorded, cashless transactions are verified and any variance is explained. Posts unposted counted cash to the ledger.
// @Tags turnovers
// @Accept json
// @Produce json
// @Param save body dto.SaveTurnoverRequest true "Turnover key"
// @Success 200 {object} dto.TurnoverRowResponse
// @Failure 400 {object} ErrorResponse "Variance note missing"
// @Failure 404 {object} ErrorResponse "No turnover record for this key"
// @Failure 409 {object} ErrorResponse "Preconditions not met or concurrent save"
// @Security BearerAuth
// @Router /turnovers/save [post]
func (h *turnoverHandler) saveTurnover(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SaveTurnoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveTurnover", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	byUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	row, err := h.turnoverService.Save(c.Request.Context(), req, byUserID)
	if err != nil {
		logger.Warn("Failed to save turnover",
			slog.String("business_date", req.BusinessDate),
			slog.String("cashier_user_id", req.CashierUserID),
			slog.String("error", err.Error()))
		respondError(c, err, "Failed to save turnover")
		return
	}

	logger.Info("Turnover saved",
		slog.String("business_date", req.BusinessDate),
		slog.String("cashier_user_id", req.CashierUserID))
	c.JSON(http.StatusOK, row)
}

// setFlag godoc
// @Summary Flag or unflag a turnover record
// @Description Sets or clears the advisory flagged bit. Flagging never blocks other operations.
// @Tags turnovers
// @Accept json
// @Produce json
// @Param flag body dto.FlagTurnoverRequest true "Turnover key and flag value"
// @Success 200 {object} dto.TurnoverRowResponse
// @Failure 404 {object} ErrorResponse "No turnover record for this key"
// @Security BearerAuth
// @Router /turnovers/flag [post]
func (h *turnoverHandler) setFlag(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.FlagTurnoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetFlag", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	byUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	row, err := h.turnoverService.SetFlag(c.Request.Context(), req, byUserID)
	if err != nil {
		logger.Warn("Failed to set turnover flag",
			slog.String("business_date", req.BusinessDate),
			slog.String("cashier_user_id", req.CashierUserID),
			slog.String("error", err.Error()))
		respondError(c, err, "Failed to set turnover flag")
		return
	}

	c.JSON(http.StatusOK, row)
}

// listTurnovers godoc
// @Summary List turnover records
// @Description Retrieves reconciliation rows for a date range, optionally narrowed to one computed status.
// @Tags turnovers
// @Produce json
// @Param from query string false "Range start (YYYY-MM-DD), defaults to 30 days before the range end"
// @Param to query string false "Range end (YYYY-MM-DD), defaults to today"
// @Param status query string false "all (default) | pending | verified | flagged"
// @Success 200 {array} dto.TurnoverRowResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /turnovers [get]
func (h *turnoverHandler) listTurnovers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListTurnoversParams{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Status: c.Query("status"),
	}

	rows, err := h.turnoverService.ListTurnovers(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list turnovers", slog.String("error", err.Error()))
		respondError(c, err, "Failed to list turnovers")
		return
	}

	c.JSON(http.StatusOK, rows)
}

// getTurnover godoc
// @Summary Get one turnover record
// @Tags turnovers
// @Produce json
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Param cashierID path string true "Cashier user ID"
// @Success 200 {object} dto.TurnoverRowResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "No turnover record for this key"
// @Security BearerAuth
// @Router /turnovers/{date}/{cashierID} [get]
func (h *turnoverHandler) getTurnover(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	key, ok := turnoverKeyFromPath(c)
	if !ok {
		return
	}

	row, err := h.turnoverService.GetTurnover(c.Request.Context(), key)
	if err != nil {
		logger.Warn("Failed to get turnover",
			slog.String("cashier_user_id", key.CashierUserID),
			slog.String("error", err.Error()))
		respondError(c, err, "Failed to get turnover")
		return
	}

	c.JSON(http.StatusOK, row)
}

// listCashless godoc
// @Summary List cashless transactions of a turnover record
// @Tags turnovers
// @Produce json
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Param cashierID path string true "Cashier user ID"
// @Success 200 {array} dto.CashlessTransactionResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /turnovers/{date}/{cashierID}/cashless [get]
func (h *turnoverHandler) listCashless(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	key, ok := turnoverKeyFromPath(c)
	if !ok {
		return
	}

	txns, err := h.turnoverService.ListCashless(c.Request.Context(), key)
	if err != nil {
		logger.Warn("Failed to list cashless transactions",
			slog.String("cashier_user_id", key.CashierUserID),
			slog.String("error", err.Error()))
		respondError(c, err, "Failed to list cashless transactions")
		return
	}

	c.JSON(http.StatusOK, txns)
}

// closeDay godoc
// @Summary Finalize a business date
// @Description Finalizes a whole business date. Once closed, turnover mutations for that date are rejected.
// @Tags turnovers
// @Accept json
// @Produce json
// @Param close body dto.DailyCloseRequest true "Business date to finalize"
// @Success 200 {object} dto.DailyCloseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Date already finalized"
// @Security BearerAuth
// @Router /daily-close [post]
func (h *turnoverHandler) closeDay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DailyCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CloseDay", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	byUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.turnoverService.CloseDay(c.Request.Context(), req, byUserID)
	if err != nil {
		logger.Warn("Failed to close business date",
			slog.String("business_date", req.BusinessDate),
			slog.String("error", err.Error()))
		respondError(c, err, "Failed to close business date")
		return
	}

	logger.Info("Business date finalized", slog.String("business_date", req.BusinessDate))
	c.JSON(http.StatusOK, resp)
}
