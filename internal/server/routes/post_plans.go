package routes

import (
	"net/http"
	"time"

	"github.com/AmitMY/chimera/internal/metrics"
	"github.com/AmitMY/chimera/internal/server/middleware"
	"github.com/AmitMY/chimera/pkg/common"
	"github.com/AmitMY/chimera/pkg/highlight"
	"github.com/AmitMY/chimera/pkg/logger"
	"github.com/AmitMY/chimera/pkg/plan"

	"github.com/labstack/echo/v4"
)

// PlansHandler requests the plans of the session's graph, ranks them,
// optionally samples them down to a display budget and renders them.
func PlansHandler(c echo.Context) error {
	type plansData struct {
		SessionID string          `param:"id" validate:"required"`
		Mode      common.PlanMode `json:"mode" validate:"omitempty,oneof=full partial"`
		Sample    bool            `json:"sample"`
		Count     *int            `json:"count"`
	}

	type plansResponse struct {
		Plans     common.LinearizationSet `json:"plans"`
		Total     int                     `json:"total"`
		Concat    common.ConcatMap        `json:"concat"`
		Markup    string                  `json:"markup"`
		Relevance []bool                  `json:"relevance"`
	}

	data := new(plansData)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}
	if data.Mode == "" {
		data.Mode = common.PlanModeFull
	}

	app := c.(*middleware.AppContext).App
	count := app.SampleCount
	if data.Count != nil {
		count = *data.Count
	}
	if data.Sample && count < 1 {
		return errorResponse(c, plan.ErrInvalidTarget)
	}

	sess, err := app.Sessions.Get(data.SessionID)
	if err != nil {
		return errorResponse(c, err)
	}
	token, view, err := sess.BeginPlans()
	if err != nil {
		return errorResponse(c, err)
	}

	ctx := c.Request().Context()
	start := time.Now()
	concat, plans, err := app.Planner.Plans(ctx, view.Graph, data.Mode)
	if err != nil {
		app.Metrics.ObserveRemote("plans", metrics.StatusError, time.Since(start))
		logger.Error("Failed to generate plans", "err", err, "session", sess.ID, "graph", view.GraphIndex, "mode", data.Mode)
		return c.JSON(http.StatusBadGateway, remoteFailure)
	}
	app.Metrics.ObserveRemote("plans", metrics.StatusOK, time.Since(start))

	ranked := plan.AttachRanks(plans)
	if data.Sample {
		ranked, err = plan.Sample(ranked, count)
		if err != nil {
			return errorResponse(c, err)
		}
	}

	markup, err := highlight.Render(ranked.Texts(), view.Colors, concat, highlight.StyleBackground)
	if err != nil {
		logger.Error("Failed to render plans", "err", err, "session", sess.ID, "graph", view.GraphIndex)
		return errorResponse(c, err)
	}

	if _, err := sess.CommitPlans(token, concat, ranked); err != nil {
		app.Metrics.ObserveStale("plans")
		logger.Debug("Discarded stale plans", "session", sess.ID)
		return errorResponse(c, err)
	}

	relevance := highlight.Relevance(markup)
	app.Metrics.ObserveRelevance(relevance)

	return c.JSON(http.StatusOK, plansResponse{
		Plans:     ranked,
		Total:     len(plans),
		Concat:    concat,
		Markup:    markup,
		Relevance: relevance,
	})
}
