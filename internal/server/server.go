package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AmitMY/chimera/internal/annotation"
	"github.com/AmitMY/chimera/internal/catalog"
	"github.com/AmitMY/chimera/internal/metrics"
	mid "github.com/AmitMY/chimera/internal/server/middleware"
	"github.com/AmitMY/chimera/internal/session"
	"github.com/AmitMY/chimera/internal/source"
	"github.com/AmitMY/chimera/internal/storage"
	"github.com/AmitMY/chimera/pkg/chimera"
	"github.com/AmitMY/chimera/pkg/common"
	"github.com/AmitMY/chimera/pkg/logger"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewEcho builds the HTTP server for app without starting it.
func NewEcho(app *mid.App, staticDir string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64M"))

	RegisterRoutes(e, app, staticDir)
	return e
}

// NewApp wires the viewer's collaborators from cfg.
func NewApp(ctx context.Context, cfg Config) (*mid.App, error) {
	planner, err := chimera.NewClient(chimera.NewClientParams{
		BaseURL:           cfg.ChimeraURL,
		Timeout:           cfg.RemoteTimeout,
		RequestsPerSecond: cfg.RemoteRPS,
		Burst:             cfg.RemoteBurst,
	})
	if err != nil {
		return nil, err
	}

	translator, err := newTranslator(cfg, planner)
	if err != nil {
		return nil, err
	}

	var s3Client *s3.Client
	if cfg.needsS3() {
		s3Client, err = storage.NewS3Client(ctx, storage.S3Params{
			Region:    cfg.AWSRegion,
			Endpoint:  cfg.AWSEndpoint,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
		})
		if err != nil {
			return nil, err
		}
	}
	loader := source.NewLoader(source.NewLoaderParams{S3: s3Client})

	fetch := planner.Graphs
	if cfg.GraphsSource != "" {
		fetch = func(ctx context.Context) ([]common.Graph, error) {
			return source.LoadJSON[[]common.Graph](ctx, loader, cfg.GraphsSource)
		}
	}

	app := &mid.App{
		Catalog:     catalog.NewCatalog(fetch, cfg.DefaultGraph),
		Sessions:    session.NewStore(),
		Planner:     planner,
		Translator:  translator,
		Annotations: annotation.NewStore(),
		Metrics:     metrics.NewCollector(),

		SampleCount:   cfg.SampleCount,
		ShuffleRounds: cfg.ShuffleRounds,

		MasterAPIKey:   cfg.MasterAPIKey,
		MasterUserID:   cfg.MasterUserID,
		MasterUserRole: cfg.MasterUserRole,
	}

	if cfg.AuthURL != "" {
		k, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.AuthURL + "/jwks"})
		if err != nil {
			return nil, err
		}
		app.Key = k
	}

	go preload(ctx, app, loader, cfg.SamplesSource)
	return app, nil
}

// preload warms the graph catalog and reads the annotation samples. Failures
// are logged only; the catalog is fetched again on the next request.
func preload(ctx context.Context, app *mid.App, loader *source.Loader, samplesSource string) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		graphs, err := app.Catalog.Load(ctx)
		if err != nil {
			logger.Warn("Failed to preload graphs", "err", err)
			return nil
		}
		logger.Info("Loaded graphs", "count", len(graphs))
		return nil
	})

	if samplesSource != "" {
		g.Go(func() error {
			data, err := loader.Load(ctx, samplesSource)
			if err != nil {
				logger.Warn("Failed to load annotation samples", "source", samplesSource, "err", err)
				return nil
			}
			samples, err := annotation.Parse(data)
			if err != nil {
				logger.Warn("Failed to parse annotation samples", "source", samplesSource, "err", err)
				return nil
			}
			app.Annotations.Replace(samples)
			logger.Info("Loaded annotation samples", "records", len(samples))
			return nil
		})
	}

	_ = g.Wait()
}

// pruneSessions drops idle sessions until ctx is done.
func pruneSessions(ctx context.Context, app *mid.App, maxIdle time.Duration) {
	ticker := time.NewTicker(maxIdle / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := app.Sessions.Prune(maxIdle); removed > 0 {
				logger.Debug("Pruned idle sessions", "removed", removed)
			}
			app.Metrics.SetSessions(app.Sessions.Len())
		}
	}
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := LoadConfig()
	app, err := NewApp(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to set up viewer", "err", err)
	}
	if cfg.SessionIdle > 0 {
		go pruneSessions(ctx, app, cfg.SessionIdle)
	}

	e := NewEcho(app, cfg.StaticDir)

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "chimera", cfg.ChimeraURL, "translate", cfg.TranslateAdapter)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
