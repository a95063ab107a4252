package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	portssvc "github.com/lpgdepot/depot_backend/internal/core/ports/services"
	"github.com/lpgdepot/depot_backend/internal/dto"
	"github.com/lpgdepot/depot_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests related to the ledger and chart of accounts.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ls,
	}
}

// registerLedgerRoutes registers routes related to the ledger.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.POST("/entries", h.postEntry)
		ledger.POST("/sales", h.postSale)
		ledger.GET("", h.listLedger)
		ledger.GET("/references/:type/:id", h.resolveReference)
	}

	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.GET("/:code/balance", h.getRunningBalance)
	}
}

// postEntry godoc
// @Summary Post a ledger entry
// @Description Posts one balanced batch of debit/credit lines for a business event. The batch is rejected unless debits equal credits.
// @Tags ledger
// @Accept json
// @Produce json
// @Param entry body dto.PostEntryRequest true "Entry details"
// @Success 201 {object} dto.PostEntryResponse
// @Failure 400 {object} ErrorResponse "Invalid input or unbalanced lines"
// @Failure 409 {object} ErrorResponse "Reference already posted"
// @Failure 422 {object} ErrorResponse "Integrity violation"
// @Security BearerAuth
// @Router /ledger/entries [post]
func (h *ledgerHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	postedByUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	entry, err := h.ledgerService.PostEntry(c.Request.Context(), req, postedByUserID)
	if err != nil {
		logger.Warn("Failed to post ledger entry", slog.String("error", err.Error()))
		respondError(c, err, "Failed to post ledger entry")
		return
	}

	logger.Info("Ledger entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.String("reference_type", string(entry.ReferenceType)),
		slog.String("reference_id", entry.ReferenceID))
	c.JSON(http.StatusCreated, dto.PostEntryResponse{
		EntryID:       entry.EntryID,
		ReferenceType: string(entry.ReferenceType),
		ReferenceID:   entry.ReferenceID,
	})
}

// postSale godoc
// @Summary Post the ledger entries for a completed sale
// @Description Composes and posts revenue/VAT recognition plus the COGS movement for a sale recorded upstream.
// @Tags ledger
// @Accept json
// @Produce json
// @Param sale body dto.PostSaleRequest true "Sale amounts"
// @Success 201 {object} dto.PostEntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Sale already posted"
// @Failure 422 {object} ErrorResponse "Amounts do not add up"
// @Security BearerAuth
// @Router /ledger/sales [post]
func (h *ledgerHandler) postSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PostSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostSale", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	postedByUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	entry, err := h.ledgerService.PostSale(c.Request.Context(), req, postedByUserID)
	if err != nil {
		logger.Warn("Failed to post sale", slog.String("sale_id", req.SaleID), slog.String("error", err.Error()))
		respondError(c, err, "Failed to post sale")
		return
	}

	logger.Info("Sale posted to ledger", slog.String("sale_id", req.SaleID), slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusCreated, dto.PostEntryResponse{
		EntryID:       entry.EntryID,
		ReferenceType: string(entry.ReferenceType),
		ReferenceID:   entry.ReferenceID,
	})
}

// listLedger godoc
// @Summary List ledger lines
// @Description Retrieves a filtered, cursor-paginated ledger view with filter-wide totals.
// @Tags ledger
// @Produce json
// @Param q query string false "Free text search over description, reference and bank ref"
// @Param referenceType query string false "Filter by reference type"
// @Param accountCode query string false "Filter by account code"
// @Param from query string false "Business date lower bound (YYYY-MM-DD)"
// @Param to query string false "Business date upper bound (YYYY-MM-DD)"
// @Param cleared query string false "all | cleared | uncleared"
// @Param bankRef query string false "Filter by bank reference"
// @Param sort query string false "posted_at_desc (default) | posted_at_asc"
// @Param limit query int false "Page size (default 50, max 100)"
// @Param nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListLedgerResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /ledger [get]
func (h *ledgerHandler) listLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListLedgerParams{
		Query:         c.Query("q"),
		ReferenceType: c.Query("referenceType"),
		AccountCode:   c.Query("accountCode"),
		From:          c.Query("from"),
		To:            c.Query("to"),
		Cleared:       c.Query("cleared"),
		BankRef:       c.Query("bankRef"),
		Sort:          c.Query("sort"),
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit parameter"})
			return
		}
		params.Limit = limit
	}
	if token := c.Query("nextToken"); token != "" {
		params.NextToken = &token
	}

	resp, err := h.ledgerService.ListLedger(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list ledger lines", slog.String("error", err.Error()))
		respondError(c, err, "Failed to list ledger lines")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// resolveReference godoc
// @Summary Resolve a ledger reference
// @Description Returns every line posted under a reference along with totals and a balance check recomputed from the lines.
// @Tags ledger
// @Produce json
// @Param type path string true "Reference type"
// @Param id path string true "Reference ID"
// @Success 200 {object} dto.ResolveReferenceResponse
// @Failure 404 {object} ErrorResponse "No lines posted under this reference"
// @Security BearerAuth
// @Router /ledger/references/{type}/{id} [get]
func (h *ledgerHandler) resolveReference(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	referenceType := c.Param("type")
	referenceID := c.Param("id")

	resp, err := h.ledgerService.ResolveReference(c.Request.Context(), referenceType, referenceID)
	if err != nil {
		logger.Warn("Failed to resolve reference",
			slog.String("reference_type", referenceType),
			slog.String("reference_id", referenceID),
			slog.String("error", err.Error()))
		respondError(c, err, "Failed to resolve reference")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listAccounts godoc
// @Summary List the chart of accounts
// @Tags accounts
// @Produce json
// @Success 200 {array} dto.AccountResponse
// @Security BearerAuth
// @Router /accounts [get]
func (h *ledgerHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accounts, err := h.ledgerService.ListAccounts(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		respondError(c, err, "Failed to list accounts")
		return
	}

	responses := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = dto.ToAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, responses)
}

// getRunningBalance godoc
// @Summary Get an account's running balance
// @Description Returns the signed balance of an account as of a date, oriented to the account's normal side.
// @Tags accounts
// @Produce json
// @Param code path string true "Account code"
// @Param asOf query string false "Balance date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.RunningBalanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Unknown account"
// @Security BearerAuth
// @Router /accounts/{code}/balance [get]
func (h *ledgerHandler) getRunningBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountCode := c.Param("code")

	asOf := time.Now()
	if asOfStr := c.Query("asOf"); asOfStr != "" {
		parsed, err := time.Parse("2006-01-02", asOfStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid asOf date, expected YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	balance, err := h.ledgerService.RunningBalance(c.Request.Context(), accountCode, asOf)
	if err != nil {
		logger.Warn("Failed to compute running balance",
			slog.String("account_code", accountCode),
			slog.String("error", err.Error()))
		respondError(c, err, "Failed to compute running balance")
		return
	}

	c.JSON(http.StatusOK, dto.RunningBalanceResponse{
		AccountCode: accountCode,
		AsOf:        asOf.Format("2006-01-02"),
		Balance:     balance,
	})
}
