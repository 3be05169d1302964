// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/menuinzicht/backend/internal/application/usecase/analytics"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
	"github.com/menuinzicht/backend/internal/domain/valueobject"
	"github.com/menuinzicht/backend/internal/integration/entrypoint/dto"
	"github.com/menuinzicht/backend/internal/integration/export"
)

// AnalyticsController handles the dashboard chart endpoints.
type AnalyticsController struct {
	getCoverageUseCase          *analytics.GetCoverageUseCase
	getComparisonUseCase        *analytics.GetComparisonUseCase
	getWeekdayComparisonUseCase *analytics.GetWeekdayComparisonUseCase
	getTimeAnalysisUseCase      *analytics.GetTimeAnalysisUseCase
	getCategoryBreakdownUseCase *analytics.GetCategoryBreakdownUseCase
	getPeriodSummaryUseCase     *analytics.GetPeriodSummaryUseCase
	getTopItemsUseCase          *analytics.GetTopItemsUseCase
	getItemsSoldUseCase         *analytics.GetItemsSoldUseCase
	defaultInterval             int
}

// AnalyticsUseCases groups the use cases served by the AnalyticsController.
type AnalyticsUseCases struct {
	GetCoverage          *analytics.GetCoverageUseCase
	GetComparison        *analytics.GetComparisonUseCase
	GetWeekdayComparison *analytics.GetWeekdayComparisonUseCase
	GetTimeAnalysis      *analytics.GetTimeAnalysisUseCase
	GetCategoryBreakdown *analytics.GetCategoryBreakdownUseCase
	GetPeriodSummary     *analytics.GetPeriodSummaryUseCase
	GetTopItems          *analytics.GetTopItemsUseCase
	GetItemsSold         *analytics.GetItemsSoldUseCase
}

// NewAnalyticsController creates a new analytics controller instance.
// defaultInterval is the time-of-day slot size used when the request omits one.
func NewAnalyticsController(useCases AnalyticsUseCases, defaultInterval int) *AnalyticsController {
	if defaultInterval <= 0 {
		defaultInterval = 15
	}
	return &AnalyticsController{
		getCoverageUseCase:          useCases.GetCoverage,
		getComparisonUseCase:        useCases.GetComparison,
		getWeekdayComparisonUseCase: useCases.GetWeekdayComparison,
		getTimeAnalysisUseCase:      useCases.GetTimeAnalysis,
		getCategoryBreakdownUseCase: useCases.GetCategoryBreakdown,
		getPeriodSummaryUseCase:     useCases.GetPeriodSummary,
		getTopItemsUseCase:          useCases.GetTopItems,
		getItemsSoldUseCase:         useCases.GetItemsSold,
		defaultInterval:             defaultInterval,
	}
}

// GetCoverage handles GET /analytics/coverage requests.
func (c *AnalyticsController) GetCoverage(ctx *gin.Context) {
	output, err := c.getCoverageUseCase.Execute(ctx.Request.Context())
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCoverageResponse(output))
}

// GetComparison handles GET /analytics/comparison requests.
func (c *AnalyticsController) GetComparison(ctx *gin.Context) {
	output, ok := c.comparison(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, dto.ToComparisonResponse(output))
}

// ExportComparison handles GET /analytics/comparison/export requests.
// It returns the same rows as GetComparison as an XLSX workbook.
func (c *AnalyticsController) ExportComparison(ctx *gin.Context) {
	output, ok := c.comparison(ctx)
	if !ok {
		return
	}

	workbook, err := export.ComparisonWorkbook(output)
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}
	defer workbook.Close()

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+export.FileName(output)+`"`)
	ctx.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (c *AnalyticsController) comparison(ctx *gin.Context) (*analytics.GetComparisonOutput, bool) {
	periods, ok := c.parsePeriods(ctx)
	if !ok {
		return nil, false
	}

	mode, err := analytics.ParseMode(ctx.DefaultQuery("mode", string(analytics.ModeDay)))
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return nil, false
	}
	metric, err := analytics.ParseMetric(ctx.DefaultQuery("metric", string(analytics.MetricRevenue)))
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return nil, false
	}
	chart, err := analytics.ParseChart(ctx.DefaultQuery("chart", string(analytics.ChartAggregated)))
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return nil, false
	}

	output, err := c.getComparisonUseCase.Execute(ctx.Request.Context(), analytics.GetComparisonInput{
		Periods: periods,
		Mode:    mode,
		Metric:  metric,
		Chart:   chart,
	})
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return nil, false
	}
	return output, true
}

// GetWeekday handles GET /analytics/weekday requests.
func (c *AnalyticsController) GetWeekday(ctx *gin.Context) {
	periods, ok := c.parsePeriods(ctx)
	if !ok {
		return
	}

	metric, err := analytics.ParseMetric(ctx.DefaultQuery("metric", string(analytics.MetricRevenue)))
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}

	output, err := c.getWeekdayComparisonUseCase.Execute(ctx.Request.Context(), analytics.GetWeekdayComparisonInput{
		Periods: periods,
		Metric:  metric,
	})
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToWeekdayResponse(output))
}

// GetTimeOfDay handles GET /analytics/time-of-day requests.
func (c *AnalyticsController) GetTimeOfDay(ctx *gin.Context) {
	periods, ok := c.parsePeriods(ctx)
	if !ok {
		return
	}

	interval := c.defaultInterval
	if raw := ctx.Query("interval"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "interval must be a number of minutes",
				Code:  string(domainerror.ErrCodeInvalidInterval),
			})
			return
		}
		interval = parsed
	}

	output, err := c.getTimeAnalysisUseCase.Execute(ctx.Request.Context(), analytics.GetTimeAnalysisInput{
		Periods:         periods,
		IntervalMinutes: interval,
	})
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTimeOfDayResponse(output))
}

// GetBreakdown handles GET /analytics/breakdown requests.
func (c *AnalyticsController) GetBreakdown(ctx *gin.Context) {
	periods, ok := c.parsePeriods(ctx)
	if !ok {
		return
	}

	category, err := analytics.ParseCategory(ctx.Query("category"))
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}
	metric, err := analytics.ParseBreakdownMetric(ctx.Query("metric"))
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}

	output, err := c.getCategoryBreakdownUseCase.Execute(ctx.Request.Context(), analytics.GetCategoryBreakdownInput{
		Periods:  periods,
		Category: category,
		Metric:   metric,
	})
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBreakdownResponse(output))
}

// GetSummary handles GET /analytics/summary requests.
func (c *AnalyticsController) GetSummary(ctx *gin.Context) {
	periods, ok := c.parsePeriods(ctx)
	if !ok {
		return
	}

	output, err := c.getPeriodSummaryUseCase.Execute(ctx.Request.Context(), analytics.GetPeriodSummaryInput{
		Periods: periods,
	})
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSummaryResponse(output))
}

// GetTopItems handles GET /analytics/top-items requests.
func (c *AnalyticsController) GetTopItems(ctx *gin.Context) {
	periods, ok := c.parsePeriods(ctx)
	if !ok {
		return
	}

	category, err := analytics.ParseCategory(ctx.Query("category"))
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}
	rank, err := analytics.ParseRankType(ctx.Query("type"))
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}

	limit := analytics.DefaultTopItemsLimit
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "limit must be a positive number",
			})
			return
		}
		limit = parsed
	}

	output, err := c.getTopItemsUseCase.Execute(ctx.Request.Context(), analytics.GetTopItemsInput{
		Periods:  periods,
		Category: category,
		Rank:     rank,
		Limit:    limit,
	})
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTopItemsResponse(output))
}

// GetItemsSold handles GET /analytics/items-sold requests.
// The selection is either time_start/time_end or weekday.
func (c *AnalyticsController) GetItemsSold(ctx *gin.Context) {
	r, ok := c.parseRange(ctx, "start", "end")
	if !ok {
		return
	}

	input := analytics.GetItemsSoldInput{
		Range:     *r,
		TimeStart: ctx.Query("time_start"),
		TimeEnd:   ctx.Query("time_end"),
	}
	if raw := ctx.Query("weekday"); raw != "" {
		weekday, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: domainerror.ErrInvalidWeekday.Error(),
				Code:  string(domainerror.ErrCodeInvalidWeekday),
			})
			return
		}
		input.Weekday = &weekday
	}

	output, err := c.getItemsSoldUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToItemsSoldResponse(output))
}

// parsePeriods reads period A from a_start/a_end and the optional period B
// from b_start/b_end. It writes the error response and returns false on failure.
func (c *AnalyticsController) parsePeriods(ctx *gin.Context) (analytics.Periods, bool) {
	a, ok := c.parseRange(ctx, "a_start", "a_end")
	if !ok {
		return analytics.Periods{}, false
	}

	periods := analytics.Periods{A: a}
	if ctx.Query("b_start") == "" && ctx.Query("b_end") == "" {
		return periods, true
	}

	b, ok := c.parseRange(ctx, "b_start", "b_end")
	if !ok {
		return analytics.Periods{}, false
	}
	periods.B = b
	return periods, true
}

func (c *AnalyticsController) parseRange(ctx *gin.Context, startParam, endParam string) (*valueobject.DateRange, bool) {
	start := ctx.Query(startParam)
	end := ctx.Query(endParam)
	if start == "" || end == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: startParam + " and " + endParam + " are required",
			Code:  string(domainerror.ErrCodeInvalidDateRange),
		})
		return nil, false
	}

	r, err := valueobject.ParseDateRange(start, end)
	if err != nil {
		c.handleAnalyticsError(ctx, err)
		return nil, false
	}
	return &r, true
}

// handleAnalyticsError maps analytics errors to HTTP responses.
func (c *AnalyticsController) handleAnalyticsError(ctx *gin.Context, err error) {
	var parseErr *domainerror.ParseError
	if errors.As(err, &parseErr) {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid date format, expected YYYY-MM-DD",
			Code:    string(domainerror.ErrCodeInvalidDateFormat),
			Details: parseErr.Error(),
		})
		return
	}

	var analyticsErr *domainerror.AnalyticsError
	if errors.As(err, &analyticsErr) {
		statusCode := c.getStatusCodeForAnalyticsError(analyticsErr.Code)
		if statusCode == http.StatusInternalServerError {
			slog.Error("Analytics request failed", "path", ctx.FullPath(), "error", err)
		}
		ctx.JSON(statusCode, dto.ErrorResponse{
			Error: analyticsErr.Message,
			Code:  string(analyticsErr.Code),
		})
		return
	}

	slog.Error("Analytics request failed", "path", ctx.FullPath(), "error", err)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
		Code:  string(domainerror.ErrCodeAnalyticsInternalError),
	})
}

// getStatusCodeForAnalyticsError maps analytics error codes to HTTP status codes.
func (c *AnalyticsController) getStatusCodeForAnalyticsError(code domainerror.AnalyticsErrorCode) int {
	switch code {
	case domainerror.ErrCodeInvalidDateFormat,
		domainerror.ErrCodeInvalidDateRange,
		domainerror.ErrCodeInvalidMode,
		domainerror.ErrCodeInvalidMetric,
		domainerror.ErrCodeInvalidStrategy,
		domainerror.ErrCodeInvalidPolicy,
		domainerror.ErrCodeInvalidCategory,
		domainerror.ErrCodeInvalidInterval,
		domainerror.ErrCodeMissingPeriodA,
		domainerror.ErrCodeInvalidWeekday,
		domainerror.ErrCodeInvalidTimeWindow,
		domainerror.ErrCodeInvalidChart,
		domainerror.ErrCodeInvalidRankType:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
