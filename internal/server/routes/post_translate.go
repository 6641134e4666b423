package routes

import (
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/AmitMY/chimera/internal/metrics"
	"github.com/AmitMY/chimera/internal/server/middleware"
	"github.com/AmitMY/chimera/pkg/ai"
	"github.com/AmitMY/chimera/pkg/highlight"
	"github.com/AmitMY/chimera/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TranslateHandler realizes the session's current plans, renders the
// translations and scores them.
func TranslateHandler(c echo.Context) error {
	type translateData struct {
		SessionID string `param:"id" validate:"required"`
		Beam      int    `json:"beam" validate:"min=0"`
		BestOnly  bool   `json:"best_only"`
	}

	type translateResponse struct {
		Translations []string  `json:"translations"`
		Markup       string    `json:"markup"`
		Relevance    []bool    `json:"relevance"`
		Precision    float64   `json:"precision"`
		Shuffled     []float64 `json:"shuffled"`
	}

	data := new(translateData)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}

	app := c.(*middleware.AppContext).App
	sess, err := app.Sessions.Get(data.SessionID)
	if err != nil {
		return errorResponse(c, err)
	}
	token, view, err := sess.BeginTranslate()
	if err != nil {
		return errorResponse(c, err)
	}

	ctx := c.Request().Context()
	opts := ai.TranslateOptions{Beam: data.Beam, BestOnly: data.BestOnly}
	start := time.Now()
	texts, err := app.Translator.Translate(ctx, view.Plans.Texts(), opts)
	if err != nil {
		app.Metrics.ObserveRemote("translate", metrics.StatusError, time.Since(start))
		logger.Error("Failed to translate plans", "err", err, "session", sess.ID, "plans", len(view.Plans))
		return c.JSON(http.StatusBadGateway, remoteFailure)
	}
	app.Metrics.ObserveRemote("translate", metrics.StatusOK, time.Since(start))

	markup, err := highlight.Render(texts, view.Colors, view.Concat, highlight.StyleBorder)
	if err != nil {
		logger.Error("Failed to render translations", "err", err, "session", sess.ID)
		return errorResponse(c, err)
	}

	if _, err := sess.CommitTranslate(token, texts); err != nil {
		app.Metrics.ObserveStale("translate")
		logger.Debug("Discarded stale translations", "session", sess.ID)
		return errorResponse(c, err)
	}

	relevance := highlight.Relevance(markup)
	precision := highlight.AveragePrecision(relevance)
	r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	shuffled := highlight.ShufflePrecision(relevance, app.ShuffleRounds, r)

	app.Metrics.ObserveRelevance(relevance)
	app.Metrics.ObservePrecision(precision, shuffled)
	logger.Debug("Scored translations", "session", sess.ID, "precision", precision, "shuffled", shuffled)

	return c.JSON(http.StatusOK, translateResponse{
		Translations: texts,
		Markup:       markup,
		Relevance:    relevance,
		Precision:    precision,
		Shuffled:     shuffled,
	})
}
