// Package server exposes the pricing engine, catalog, invoices, patient
// history, and coefficient settings over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/gyeh/clinictariff/internal/catalog"
	"github.com/gyeh/clinictariff/internal/coefficients"
	"github.com/gyeh/clinictariff/internal/config"
	"github.com/gyeh/clinictariff/internal/history"
	"github.com/gyeh/clinictariff/internal/invoice"
	"github.com/gyeh/clinictariff/internal/pricing"
)

const shutdownTimeout = 10 * time.Second

// Deps are the components the API serves.
type Deps struct {
	Catalog          *catalog.Catalog
	Table            *coefficients.Table
	History          *history.Store // optional
	CoefficientsPath string
	DefaultTariff    invoice.TariffType
	Clinic           config.Clinic
	Log              zerolog.Logger
}

// Server holds the handlers' shared state.
type Server struct {
	catalog  *catalog.Catalog
	table    *coefficients.Table
	engine   *pricing.Engine
	builder  *invoice.Builder
	history  *history.Store
	coefPath string
	tariff   invoice.TariffType
	clinic   config.Clinic
	log      zerolog.Logger

	// coefMu serializes coefficient updates from read through save and swap.
	coefMu sync.Mutex
}

// New wires a Server from its dependencies.
func New(d Deps) *Server {
	engine := pricing.NewEngine(d.Table)
	tariff := d.DefaultTariff
	if tariff == "" {
		tariff = invoice.Insured
	}
	return &Server{
		catalog:  d.Catalog,
		table:    d.Table,
		engine:   engine,
		builder:  invoice.NewBuilder(d.Catalog, engine),
		history:  d.History,
		coefPath: d.CoefficientsPath,
		tariff:   tariff,
		clinic:   d.Clinic,
		log:      d.Log.With().Str("component", "server").Logger(),
	}
}

// Echo builds the router with middleware and every route registered.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(requestLogger(s.log))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	api.GET("/quote", s.handleQuote)
	api.GET("/categories", s.handleCategories)
	api.GET("/catalog", s.handleCatalog)
	api.GET("/clinic", s.handleClinic)
	api.POST("/invoices", s.handleCreateInvoice)
	api.GET("/patients", s.handleListPatients)
	api.GET("/patients/:nid", s.handleGetPatient)
	api.GET("/coefficients", s.handleGetCoefficients)
	api.PUT("/coefficients", s.handlePutCoefficients)
	return e
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	e := s.Echo()
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Int("services", s.catalog.Len()).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutCtx); err != nil {
		return err
	}
	s.log.Info().Msg("server stopped")
	return nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			evt := log.Info()
			if err != nil {
				evt = log.Warn().Err(err)
			}
			evt.
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
