package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attendancehandler "gatehouse/internal/attendance/handler"
	attendancemetrics "gatehouse/internal/attendance/metrics"
	attendanceservice "gatehouse/internal/attendance/service"
	complainthandler "gatehouse/internal/complaint/handler"
	complaintservice "gatehouse/internal/complaint/service"
	"gatehouse/internal/dashboard"
	directoryhandler "gatehouse/internal/directory/handler"
	directoryservice "gatehouse/internal/directory/service"
	packagehandler "gatehouse/internal/package/handler"
	packagemetrics "gatehouse/internal/package/metrics"
	packageservice "gatehouse/internal/package/service"
	"gatehouse/internal/platform/config"
	"gatehouse/internal/platform/httpserver"
	"gatehouse/internal/platform/logger"
	platformmetrics "gatehouse/internal/platform/metrics"
	"gatehouse/internal/platform/middleware"
	qrhandler "gatehouse/internal/qrpass/handler"
	qrmetrics "gatehouse/internal/qrpass/metrics"
	qrservice "gatehouse/internal/qrpass/service"
	visithandler "gatehouse/internal/visit/handler"
	visitmetrics "gatehouse/internal/visit/metrics"
	visitservice "gatehouse/internal/visit/service"
	"gatehouse/pkg/platform/audit/publisher"
	"gatehouse/pkg/platform/httputil"
	"gatehouse/pkg/platform/middleware/admin"
	"gatehouse/pkg/platform/middleware/metadata"
	"gatehouse/pkg/platform/middleware/requesttime"
)

const (
	requestTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// main wires stores, services and handlers, then runs the HTTP server until
// SIGINT or SIGTERM.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("gatehouse exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	auditPublisher := publisher.NewPublisher(infra.auditStore,
		publisher.WithAsyncBuffer(cfg.Audit.Buffer),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r := newRouter(cfg, log, infra, auditPublisher, reg)

	srv := httpserver.New(cfg.Addr, r)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting gatehouse",
			"addr", cfg.Addr,
			"persistence", infra.backend,
			"scan_lock", infra.lockBackend,
			"location", cfg.Location.String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter builds every service on top of i and mounts their routes.
func newRouter(cfg config.Server, log *slog.Logger, i *infra, auditPublisher *publisher.Publisher, reg *prometheus.Registry) chi.Router {
	directory := directoryservice.New(i.directory,
		directoryservice.WithLogger(log),
		directoryservice.WithAuditPublisher(auditPublisher),
	)
	visits := visitservice.New(i.visits,
		visitservice.WithLogger(log),
		visitservice.WithAuditPublisher(auditPublisher),
		visitservice.WithMetrics(visitmetrics.New(reg)),
		visitservice.WithLocation(cfg.Location),
	)
	passes := qrservice.New(i.passes,
		qrservice.WithLogger(log),
		qrservice.WithAuditPublisher(auditPublisher),
		qrservice.WithMetrics(qrmetrics.New(reg)),
		qrservice.WithLocation(cfg.Location),
		qrservice.WithScanLock(i.scanLock, cfg.QR.ScanLockTTL),
	)
	attendance := attendanceservice.New(i.attendance, directory,
		attendanceservice.WithLogger(log),
		attendanceservice.WithAuditPublisher(auditPublisher),
		attendanceservice.WithMetrics(attendancemetrics.New(reg)),
		attendanceservice.WithLocation(cfg.Location),
	)
	packages := packageservice.New(i.packages,
		packageservice.WithLogger(log),
		packageservice.WithAuditPublisher(auditPublisher),
		packageservice.WithMetrics(packagemetrics.New(reg)),
		packageservice.WithLocation(cfg.Location),
	)
	complaints := complaintservice.New(i.complaints,
		complaintservice.WithLogger(log),
		complaintservice.WithAuditPublisher(auditPublisher),
	)

	visitH := visithandler.New(visits, log)
	qrH := qrhandler.New(passes, log)
	attendanceH := attendancehandler.New(attendance, log)
	directoryH := directoryhandler.New(directory, log)
	packageH := packagehandler.New(packages, log)
	complaintH := complainthandler.New(complaints, log)
	dashboardH := dashboard.NewHandler(dashboard.New(visits, passes, log), log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.LatencyMiddleware(platformmetrics.New(reg)))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", i.healthHandler)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	visitH.Register(r)
	qrH.Register(r)
	attendanceH.Register(r)
	packageH.Register(r)
	complaintH.Register(r)
	dashboardH.Register(r)

	r.Route("/admin", func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.AdminToken, log))
		directoryH.RegisterAdmin(r)
		visitH.RegisterAdmin(r)
		attendanceH.RegisterAdmin(r)
		complaintH.RegisterAdmin(r)
	})

	return r
}

func (i *infra) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := i.Health(r.Context()); err != nil {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
