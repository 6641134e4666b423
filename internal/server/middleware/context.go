package middleware

import (
	"github.com/AmitMY/chimera/internal/annotation"
	"github.com/AmitMY/chimera/internal/catalog"
	"github.com/AmitMY/chimera/internal/metrics"
	"github.com/AmitMY/chimera/internal/session"
	"github.com/AmitMY/chimera/pkg/ai"
	"github.com/AmitMY/chimera/pkg/chimera"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/labstack/echo/v4"
)

type AppUser struct {
	UserID      int64
	Role        string
	Permissions []string
}

// App holds everything the handlers share. Key is nil and MasterAPIKey empty
// when the viewer runs without authentication.
type App struct {
	Catalog     *catalog.Catalog
	Sessions    *session.Store
	Planner     chimera.Planner
	Translator  ai.Translator
	Annotations *annotation.Store
	Metrics     *metrics.Collector

	SampleCount   int
	ShuffleRounds int

	Key            keyfunc.Keyfunc
	MasterAPIKey   string
	MasterUserID   int64
	MasterUserRole string
}

// AuthEnabled reports whether writes need a token.
func (a *App) AuthEnabled() bool {
	return a.Key != nil || a.MasterAPIKey != ""
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
