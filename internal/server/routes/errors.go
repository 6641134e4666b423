package routes

import (
	"errors"
	"net/http"

	"github.com/AmitMY/chimera/internal/annotation"
	"github.com/AmitMY/chimera/internal/catalog"
	"github.com/AmitMY/chimera/internal/session"
	"github.com/AmitMY/chimera/pkg/highlight"
	"github.com/AmitMY/chimera/pkg/plan"

	"github.com/labstack/echo/v4"
)

// remoteFailure is the body of every response whose remote call failed. The
// viewer shows the message verbatim in the affected panel.
var remoteFailure = map[string]string{"error": "Error"}

func invalidParams(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
}

// errorResponse maps the local sentinel errors to a status. Anything unknown
// is answered with 500.
func errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, catalog.ErrGraphNotFound),
		errors.Is(err, annotation.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, plan.ErrInvalidTarget),
		errors.Is(err, session.ErrNoGraph),
		errors.Is(err, session.ErrNoPlans),
		errors.Is(err, annotation.ErrInvalidJudgment):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrStale):
		status = http.StatusConflict
	case errors.Is(err, highlight.ErrMissingSurfaceForm):
		status = http.StatusInternalServerError
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
