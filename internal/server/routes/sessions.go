package routes

import (
	"net/http"

	"github.com/AmitMY/chimera/internal/server/middleware"
	"github.com/AmitMY/chimera/internal/session"
	"github.com/AmitMY/chimera/pkg/common"
	"github.com/AmitMY/chimera/pkg/logger"

	"github.com/labstack/echo/v4"
)

type node struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

type edge struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label"`
}

type drawing struct {
	Index   int          `json:"index"`
	Triples common.Graph `json:"triples"`
	Nodes   []node       `json:"nodes"`
	Edges   []edge       `json:"edges"`
}

// drawingFor lists the nodes in ColorMap order and the edges in triple order,
// referencing nodes by their position.
func drawingFor(view session.View) drawing {
	ids := make(map[string]int, view.Colors.Len())
	nodes := make([]node, 0, view.Colors.Len())
	view.Colors.Each(func(entity, color string) {
		ids[entity] = len(nodes)
		nodes = append(nodes, node{ID: len(nodes), Label: entity, Color: color})
	})

	edges := make([]edge, len(view.Graph))
	for i, t := range view.Graph {
		edges[i] = edge{From: ids[t.Subject], To: ids[t.Object], Label: t.Relation}
	}

	return drawing{
		Index:   view.GraphIndex,
		Triples: view.Graph,
		Nodes:   nodes,
		Edges:   edges,
	}
}

func CreateSessionHandler(c echo.Context) error {
	type createSessionResponse struct {
		ID string `json:"id"`
	}

	app := c.(*middleware.AppContext).App
	sess, err := app.Sessions.Create()
	if err != nil {
		logger.Error("Failed to create session", "err", err)
		return errorResponse(c, err)
	}
	app.Metrics.SetSessions(app.Sessions.Len())

	return c.JSON(http.StatusCreated, createSessionResponse{ID: sess.ID})
}

// SelectGraphHandler makes a graph the active one of a session. Without an
// index the default graph is selected.
func SelectGraphHandler(c echo.Context) error {
	type selectGraphData struct {
		SessionID string `param:"id" validate:"required"`
		Index     *int   `json:"index" validate:"omitempty,min=0"`
	}

	data := new(selectGraphData)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	sess, err := app.Sessions.Get(data.SessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	if _, err := app.Catalog.Load(ctx); err != nil {
		logger.Error("Failed to load graphs", "err", err)
		return c.JSON(http.StatusBadGateway, remoteFailure)
	}

	var index int
	if data.Index != nil {
		index = *data.Index
	} else if index, err = app.Catalog.DefaultIndex(ctx); err != nil {
		return errorResponse(c, err)
	}

	g, err := app.Catalog.Graph(ctx, index)
	if err != nil {
		return errorResponse(c, err)
	}

	view := sess.SelectGraph(index, g)
	logger.Debug("Selected graph", "session", sess.ID, "index", index, "triples", len(g))

	return c.JSON(http.StatusOK, drawingFor(view))
}
