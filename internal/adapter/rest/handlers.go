package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/assetflow-backend/internal/adapter/presenter"
	"github.com/simaogato/assetflow-backend/internal/auth"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/usecase/portfolio"
	"github.com/simaogato/assetflow-backend/internal/usecase/stocktake"
)

type holdingRequest struct {
	Kind              string           `json:"kind"`
	Name              string           `json:"name"`
	Amount            *decimal.Decimal `json:"amount"`
	AnnualRatePercent *decimal.Decimal `json:"annual_rate_percent"`
	Memo              *string          `json:"memo"`
}

func (r holdingRequest) input() (portfolio.HoldingInput, error) {
	input := portfolio.HoldingInput{
		Kind: domain.HoldingKind(r.Kind),
		Name: r.Name,
		Memo: r.Memo,
	}
	if r.Amount == nil {
		return input, fmt.Errorf("amount is required")
	}
	input.Amount = *r.Amount
	if r.AnnualRatePercent != nil {
		input.AnnualRatePercent = *r.AnnualRatePercent
	} else {
		input.AnnualRatePercent = input.Kind.DefaultRatePercent()
	}
	return input, nil
}

type projectionRequest struct {
	Principal         *decimal.Decimal `json:"principal"`
	AnnualRatePercent *decimal.Decimal `json:"annual_rate_percent"`
	Years             *int             `json:"years"`
}

type simulateRequest struct {
	AnnualRatePercent *decimal.Decimal `json:"annual_rate_percent"`
	Years             *int             `json:"years"`
}

type beginStockTakeRequest struct {
	Years int `json:"years"`
}

// adjustedAmountRequest takes raw user text or a JSON number
type adjustedAmountRequest struct {
	Amount interface{} `json:"amount"`
}

func (r adjustedAmountRequest) raw() string {
	switch v := r.Amount.(type) {
	case string:
		return v
	case float64:
		return stocktake.AmountText(v)
	default:
		return ""
	}
}

type cancelStockTakeRequest struct {
	Confirm bool `json:"confirm"`
}

// bindOptionalJSON binds the body when one is present
func bindOptionalJSON(c *gin.Context, out interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(out)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id", fmt.Errorf("invalid id format: %w", err))
		return uuid.Nil, false
	}
	return id, true
}

func ownerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := auth.OwnerFromContext(c.Request.Context())
	if err != nil {
		returnErrorJson(c, err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ApiHandler) listHoldings(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	snapshot, err := h.PortfolioService.LoadHoldings(c.Request.Context(), owner)
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.Snapshot(snapshot))
}

func (h *ApiHandler) addHolding(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var requestBody holdingRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		badRequest(c, "body", err)
		return
	}
	input, err := requestBody.input()
	if err != nil {
		badRequest(c, "amount", err)
		return
	}

	holding, snapshot, err := h.PortfolioService.AddHolding(c.Request.Context(), owner, input)
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	c.JSON(http.StatusCreated, presenter.M{
		"holding":  presenter.Holding(holding),
		"snapshot": presenter.Snapshot(snapshot),
	})
}

func (h *ApiHandler) updateHolding(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var requestBody holdingRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		badRequest(c, "body", err)
		return
	}
	input, err := requestBody.input()
	if err != nil {
		badRequest(c, "amount", err)
		return
	}

	holding, snapshot, err := h.PortfolioService.UpdateHolding(c.Request.Context(), owner, id, input)
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.M{
		"holding":  presenter.Holding(holding),
		"snapshot": presenter.Snapshot(snapshot),
	})
}

func (h *ApiHandler) deleteHolding(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	snapshot, err := h.PortfolioService.DeleteHolding(c.Request.Context(), owner, id)
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.M{"snapshot": presenter.Snapshot(snapshot)})
}

func (h *ApiHandler) getSummary(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	summary, err := h.DashboardService.GetSummary(c.Request.Context(), owner)
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.Summary(summary))
}

func (h *ApiHandler) project(c *gin.Context) {
	var requestBody projectionRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		badRequest(c, "body", err)
		return
	}
	if requestBody.Principal == nil {
		badRequest(c, "principal", fmt.Errorf("principal is required"))
		return
	}

	result, err := h.DashboardService.Project(*requestBody.Principal, requestBody.AnnualRatePercent, requestBody.Years)
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.Projection(result))
}

func (h *ApiHandler) simulate(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var requestBody simulateRequest
	if err := bindOptionalJSON(c, &requestBody); err != nil {
		badRequest(c, "body", err)
		return
	}

	record, err := h.DashboardService.Simulate(c.Request.Context(), owner, requestBody.AnnualRatePercent, requestBody.Years)
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	c.JSON(http.StatusCreated, presenter.Record(record))
}

func (h *ApiHandler) listHistory(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	records, err := h.HistoryService.List(c.Request.Context(), owner)
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.HistoryGroups(records, h.Now()))
}

func (h *ApiHandler) getHistory(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	record, err := h.HistoryService.Get(c.Request.Context(), owner, id)
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.Record(record))
}

func (h *ApiHandler) deleteHistory(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.HistoryService.Remove(c.Request.Context(), owner, id); err != nil {
		returnErrorJson(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ApiHandler) beginStockTake(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var requestBody beginStockTakeRequest
	if err := bindOptionalJSON(c, &requestBody); err != nil {
		badRequest(c, "body", err)
		return
	}

	session, err := h.StockTakeService.Begin(c.Request.Context(), owner, requestBody.Years)
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	h.renderStockTake(c, http.StatusCreated, session)
}

func (h *ApiHandler) getStockTake(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	session, err := h.StockTakeService.Session(owner)
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	h.renderStockTake(c, http.StatusOK, session)
}

func (h *ApiHandler) setAdjustedAmount(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var requestBody adjustedAmountRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		badRequest(c, "body", err)
		return
	}

	session, err := h.StockTakeService.Session(owner)
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	line, err := session.SetAdjustedAmount(id, requestBody.raw())
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	totals, err := session.ComputeTotals()
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.M{
		"line":   presenter.Line(line),
		"totals": presenter.Totals(totals),
		"dirty":  session.Dirty(),
	})
}

func (h *ApiHandler) saveStockTake(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	result, err := h.StockTakeService.Save(c.Request.Context(), owner)
	if err != nil {
		returnErrorJson(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.SaveResult(result))
}

func (h *ApiHandler) cancelStockTake(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var requestBody cancelStockTakeRequest
	if err := bindOptionalJSON(c, &requestBody); err != nil {
		badRequest(c, "body", err)
		return
	}

	if err := h.StockTakeService.Cancel(owner, requestBody.Confirm); err != nil {
		returnErrorJson(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.M{"state": stocktake.StateIdle.String()})
}

func (h *ApiHandler) renderStockTake(c *gin.Context, status int, session *stocktake.Coordinator) {
	body, err := presenter.StockTake(session)
	if err != nil {
		returnErrorJson(c, err)
		return
	}
	c.JSON(status, body)
}
