package server

import (
	mid "github.com/AmitMY/chimera/internal/server/middleware"
	"github.com/AmitMY/chimera/internal/server/routes"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func RegisterRoutes(e *echo.Echo, app *mid.App, staticDir string) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(app.Metrics.Handler()))

	apiRoutes := e.Group("/api")

	// Graph catalog routes
	apiRoutes.GET("/graphs", routes.GetGraphsHandler)
	apiRoutes.GET("/graphs/sizes", routes.GetGraphSizesHandler)
	apiRoutes.GET("/graphs/random", routes.GetRandomGraphHandler)

	// Session routes
	apiRoutes.POST("/sessions", routes.CreateSessionHandler)
	apiRoutes.PUT("/sessions/:id/graph", routes.SelectGraphHandler)
	apiRoutes.POST("/sessions/:id/plans", routes.PlansHandler)
	apiRoutes.POST("/sessions/:id/translate", routes.TranslateHandler)

	// Annotation routes
	apiRoutes.GET("/annotations", routes.GetAnnotationsHandler)
	apiRoutes.GET("/annotations/download", routes.DownloadAnnotationsHandler)
	apiRoutes.GET("/annotations/schema", routes.GetAnnotationSchemaHandler)

	canUpdate := mid.RequirePermission(mid.PermissionAnnotationUpdate)
	apiRoutes.POST("/annotations/import", routes.ImportAnnotationsHandler, mid.AuthMiddleware, canUpdate)
	apiRoutes.PATCH("/annotations/:index/rdf/:triple", routes.PatchJudgmentHandler, mid.AuthMiddleware, canUpdate)
	apiRoutes.PATCH("/annotations/:index/hal", routes.PatchHalHandler, mid.AuthMiddleware, canUpdate)

	if staticDir != "" {
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:  staticDir,
			Index: "index.html",
		}))
	}
}
