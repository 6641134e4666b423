package routes

import (
	"net/http"

	"github.com/AmitMY/chimera/internal/catalog"
	"github.com/AmitMY/chimera/internal/server/middleware"
	"github.com/AmitMY/chimera/pkg/logger"

	"github.com/labstack/echo/v4"
)

func GetGraphsHandler(c echo.Context) error {
	type graphsResponse struct {
		Graphs  []catalog.Summary `json:"graphs"`
		Default int               `json:"default"`
	}

	ctx := c.Request().Context()
	cat := c.(*middleware.AppContext).App.Catalog

	summaries, err := cat.Summaries(ctx)
	if err != nil {
		logger.Error("Failed to load graphs", "err", err)
		return c.JSON(http.StatusBadGateway, remoteFailure)
	}
	def, err := cat.DefaultIndex(ctx)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, graphsResponse{
		Graphs:  summaries,
		Default: def,
	})
}

func GetGraphSizesHandler(c echo.Context) error {
	ctx := c.Request().Context()
	cat := c.(*middleware.AppContext).App.Catalog

	sizes, err := cat.Sizes(ctx)
	if err != nil {
		logger.Error("Failed to load graphs", "err", err)
		return c.JSON(http.StatusBadGateway, remoteFailure)
	}
	return c.JSON(http.StatusOK, map[string][]int{"sizes": sizes})
}

func GetRandomGraphHandler(c echo.Context) error {
	type randomGraphData struct {
		Size int `query:"size" validate:"required,min=1"`
	}

	data := new(randomGraphData)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}

	ctx := c.Request().Context()
	cat := c.(*middleware.AppContext).App.Catalog

	if _, err := cat.Load(ctx); err != nil {
		logger.Error("Failed to load graphs", "err", err)
		return c.JSON(http.StatusBadGateway, remoteFailure)
	}
	index, err := cat.Random(ctx, data.Size)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"index": index})
}
