package api

import (
	"net/http"

	models "WatchPull/internal/domain/models"
	domrepo "WatchPull/internal/domain/repository"
	"WatchPull/internal/usecase"
	xhttp "WatchPull/pkg/http"
	xlogger "WatchPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RunsEchoHandler exposes the serve-mode HTTP surface: triggering runs and
// reading back stored results.
type RunsEchoHandler struct {
	logger  *xlogger.Logger
	trigger usecase.RunTrigger
	store   domrepo.ResultStore
}

func NewRunsEchoHandler(logger *xlogger.Logger, trigger usecase.RunTrigger, store domrepo.ResultStore) *RunsEchoHandler {
	return &RunsEchoHandler{logger: logger, trigger: trigger, store: store}
}

func (h *RunsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/run", h.TriggerRun)
	g.GET("/results/latest", h.LatestResults)
	e.GET("/healthz", h.Health)
}

// TriggerRun starts an analysis run in the background. A run already in
// flight yields 409.
func (h *RunsEchoHandler) TriggerRun(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	opts := usecase.RunOptions{
		Symbols:    models.NormalizeSymbols(req.Symbols),
		Workers:    req.Workers,
		DryRun:     req.DryRun,
		SkipReview: req.SkipReview,
	}
	if err := h.trigger.TriggerRun(c.Request().Context(), opts); err != nil {
		h.logger.Warn("run trigger rejected", xlogger.Error(err))
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "accepted"})
}

// LatestResults returns the most recent stored analysis results.
func (h *RunsEchoHandler) LatestResults(c echo.Context) error {
	req := &models.LatestResultsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.store == nil {
		return c.JSON(http.StatusNotImplemented, map[string]string{"error": "result store not configured"})
	}

	res, err := h.store.LatestResults(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("latest results query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Health reports process liveness and, when configured, store health.
func (h *RunsEchoHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			status["store"] = "unhealthy"
			return c.JSON(http.StatusServiceUnavailable, status)
		}
		status["store"] = "ok"
	}
	return c.JSON(http.StatusOK, status)
}
