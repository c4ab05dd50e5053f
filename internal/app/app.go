package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"fraudscope/internal/config"
	"fraudscope/internal/dataprocessing"
	"fraudscope/internal/exporter"
	"fraudscope/internal/infrastructure"
	"fraudscope/internal/report"
	"fraudscope/internal/services"
	handlers "fraudscope/internal/transport/http"
	"fraudscope/pkg/contracts"
)

// Application wires configuration, telemetry and services together
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	Dataset       *services.DatasetService
	Health        *services.HealthService
	Exporter      *exporter.CSVWriter
	Server        *http.Server

	closeLog func() error
}

// New creates an application from cfg. When logger is nil one is built from
// the logging section and closed by Close.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	a := &Application{Config: cfg, Paths: paths, closeLog: func() error { return nil }}

	if logger == nil {
		logCfg := cfg.Logging
		logCfg.FilePath = paths.GetProjectPath(logCfg.FilePath)
		logger, a.closeLog, err = infrastructure.NewLogger(logCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	a.Logger = logger

	a.Logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))
	paths.LogPathResolution(a.Logger)

	a.OTelProviders, err = infrastructure.InitializeOTel(
		infrastructure.NewOTelConfig(cfg.Telemetry, contracts.Version), a.Logger)
	if err != nil {
		a.closeLog()
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.Metrics, err = infrastructure.NewPipelineMetrics(a.OTelProviders.Meter, a.OTelProviders.Tracer)
	if err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	if err := a.initializeServices(); err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return a, nil
}

// initializeServices builds the processing components and the services
// that own them
func (a *Application) initializeServices() error {
	cfg := a.Config

	policy, err := dataprocessing.ParseCoercionPolicy(cfg.Pipeline.CoercionPolicy)
	if err != nil {
		return err
	}
	transformerCfg := dataprocessing.DefaultTransformerConfig()
	transformerCfg.SparseThreshold = cfg.Pipeline.SparseThreshold
	transformerCfg.CoercionPolicy = policy

	a.Dataset = services.NewDatasetService(
		dataprocessing.NewLoader(a.Logger, dataprocessing.LoaderConfig{MaxLineBytes: cfg.Pipeline.MaxLineBytes}, a.Metrics),
		dataprocessing.NewTransformer(a.Logger, transformerCfg, a.Metrics),
		dataprocessing.NewAggregator(a.Logger, a.Metrics),
		report.NewProfiler(a.Logger, report.ProfilerConfig{TopValues: cfg.Report.TopValues}),
		report.NewWriter(a.Logger, report.WriterConfig{SampleRows: cfg.Report.SampleRows}, a.Metrics),
		a.Logger,
	)
	a.Health = services.NewHealthService(contracts.Version, a.Dataset, a.Logger)
	a.Exporter = exporter.NewCSVWriter(a.Paths, a.Logger, a.Metrics)
	return nil
}

// TransformOptions returns the cleaning options of the pipeline section
func (a *Application) TransformOptions() dataprocessing.TransformOptions {
	return dataprocessing.TransformOptions{
		DateColumns: a.Config.Pipeline.DateColumns,
		DropSparse:  a.Config.Pipeline.DropSparse,
	}
}

// Prepare loads input (the configured input file when empty) and cleans it
func (a *Application) Prepare(ctx context.Context, input string) error {
	if input == "" {
		input = a.Paths.InputFile
	} else {
		input = a.Paths.GetProjectPath(input)
	}
	if err := a.Dataset.Load(ctx, input); err != nil {
		return err
	}
	if _, err := a.Dataset.Transform(ctx, a.TransformOptions()); err != nil {
		return err
	}
	return nil
}

// GenerateReport writes the profiling workbook when reports are enabled. It
// returns the report path, or "" when nothing was written.
func (a *Application) GenerateReport(ctx context.Context) string {
	if !a.Config.Report.Enabled {
		a.Logger.InfoContext(ctx, "report generation disabled")
		return ""
	}
	out := a.Paths.GetReportPath(a.Config.Report.OutputFile)
	if !a.Dataset.Profile(ctx, out) {
		return ""
	}
	return out
}

// Handler builds the HTTP API handler
func (a *Application) Handler() http.Handler {
	return handlers.NewRouter(a.routerOptions())
}

func (a *Application) routerOptions() handlers.RouterOptions {
	return handlers.RouterOptions{
		Dataset:        a.Dataset,
		Health:         a.Health,
		OTel:           a.OTelProviders,
		Logger:         a.Logger,
		HeadRows:       a.Config.Pipeline.HeadRows,
		RequestTimeout: a.Config.Server.RequestTimeout,
		RateLimit:      a.Config.Server.RateLimit,
	}
}

// Serve runs the HTTP server until ctx is done, then shuts it down
// gracefully. ready, when not nil, receives the bound address.
func (a *Application) Serve(ctx context.Context, ready chan<- string) error {
	a.Server = &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(a.Config.Server.Port)),
		Handler:      a.Handler(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.Logger.InfoContext(ctx, "server listening", slog.String("address", ln.Addr().String()))
	if ready != nil {
		ready <- ln.Addr().String()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Close flushes telemetry and closes the log file
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("OpenTelemetry shutdown: %w", err))
		}
	}
	if a.Logger != nil {
		a.Logger.InfoContext(ctx, "application shutdown complete")
	}
	if a.closeLog != nil {
		if err := a.closeLog(); err != nil {
			errs = append(errs, fmt.Errorf("close log: %w", err))
		}
	}
	return errors.Join(errs...)
}
