package routes

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/AmitMY/chimera/internal/annotation"
	"github.com/AmitMY/chimera/internal/server/middleware"
	"github.com/AmitMY/chimera/pkg/common"
	"github.com/AmitMY/chimera/pkg/logger"

	"github.com/labstack/echo/v4"
)

func GetAnnotationsHandler(c echo.Context) error {
	type annotationsResponse struct {
		Records   []common.Sample   `json:"records"`
		Judgments []common.Judgment `json:"judgments"`
		Judged    int               `json:"judged"`
		Total     int               `json:"total"`
	}

	store := c.(*middleware.AppContext).App.Annotations
	judged, total := store.Progress()

	return c.JSON(http.StatusOK, annotationsResponse{
		Records:   store.Records(),
		Judgments: common.Judgments,
		Judged:    judged,
		Total:     total,
	})
}

// ImportAnnotationsHandler replaces every record with an uploaded sample
// file, sent either as the request body or as the multipart field "file".
func ImportAnnotationsHandler(c echo.Context) error {
	var body io.Reader = c.Request().Body
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return invalidParams(c)
		}
		f, err := fh.Open()
		if err != nil {
			return invalidParams(c)
		}
		defer f.Close()
		body = f
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return invalidParams(c)
	}

	samples, err := annotation.Parse(data)
	if err != nil {
		logger.Warn("Rejected annotation import", "err", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	app := c.(*middleware.AppContext).App
	app.Annotations.Replace(samples)
	logger.Info("Imported annotation records", "records", len(samples), "user", c.(*middleware.AppContext).User.UserID)

	return c.JSON(http.StatusOK, map[string]int{"records": len(samples)})
}

func PatchJudgmentHandler(c echo.Context) error {
	type judgmentData struct {
		Index    int             `param:"index" validate:"min=0"`
		Triple   int             `param:"triple" validate:"min=0"`
		Judgment common.Judgment `json:"judgment" validate:"required,oneof=yes no no-lex no-reg"`
	}

	data := new(judgmentData)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}

	store := c.(*middleware.AppContext).App.Annotations
	record, err := store.SetJudgment(data.Index, data.Triple, data.Judgment)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, record)
}

// PatchHalHandler stores the hallucination count of a record. The value is
// taken as typed by the annotator; anything not numeric is stored as 0.
func PatchHalHandler(c echo.Context) error {
	type halData struct {
		Index int `param:"index" validate:"min=0"`
		Value any `json:"value"`
	}

	data := new(halData)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}

	store := c.(*middleware.AppContext).App.Annotations
	record, err := store.SetHal(data.Index, halInput(data.Value))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, record)
}

func DownloadAnnotationsHandler(c echo.Context) error {
	store := c.(*middleware.AppContext).App.Annotations
	data, err := store.Export()
	if err != nil {
		logger.Error("Failed to export annotations", "err", err)
		return errorResponse(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="samples.json"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

func GetAnnotationSchemaHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, annotation.Schema())
}

// halInput turns the decoded JSON value back into the text the annotator
// typed.
func halInput(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
