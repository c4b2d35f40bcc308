// Package server assembles the support case HTTP server: middleware, API
// routes and the operational endpoints.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tansive/supporttracker/internal/common/httpx"
	commonmiddleware "github.com/tansive/supporttracker/internal/common/middleware"
	"github.com/tansive/supporttracker/internal/supportsrv/apis"
	"github.com/tansive/supporttracker/internal/supportsrv/config"
	"github.com/tansive/supporttracker/internal/supportsrv/db"
	"github.com/tansive/supporttracker/internal/supportsrv/db/dbmanager"
	"github.com/tansive/supporttracker/internal/supportsrv/supportcases"
)

// ServerVersion is overridden at build time with -ldflags "-X".
var ServerVersion = "0.1.0"

const ApiVersion = "v1"

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "supporttracker"

type SupportServer struct {
	Router   *chi.Mux
	cfg      *config.ConfigParam
	gw       dbmanager.Gateway
	svc      *supportcases.Service
	registry *prometheus.Registry
	metrics  *commonmiddleware.HTTPMetrics
}

// CreateNewServer wires the service over cases and registers the metrics
// collectors. Routes are added by MountHandlers.
func CreateNewServer(cfg *config.ConfigParam, gw dbmanager.Gateway, cases db.CaseManager) (*SupportServer, error) {
	s := &SupportServer{
		Router:   chi.NewRouter(),
		cfg:      cfg,
		gw:       gw,
		svc:      supportcases.NewService(cases),
		registry: prometheus.NewRegistry(),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		dbmanager.NewPoolCollector(gw, MetricsNamespace),
	} {
		if err := s.registry.Register(c); err != nil {
			return nil, err
		}
	}
	m, err := commonmiddleware.NewHTTPMetrics(s.registry, MetricsNamespace)
	if err != nil {
		return nil, err
	}
	s.metrics = m
	return s, nil
}

func (s *SupportServer) MountHandlers() error {
	var timeout time.Duration
	if s.cfg.Server.RequestTimeout != "" {
		d, err := s.cfg.Server.GetRequestTimeout()
		if err != nil {
			return err
		}
		timeout = d
	}

	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(s.metrics.Handler)
	s.Router.Use(commonmiddleware.PanicHandler)
	s.Router.Use(commonmiddleware.SetTimeout(timeout))
	s.Router.Use(commonmiddleware.MaxBodySize(s.cfg.Server.MaxRequestBodySize))
	if s.cfg.Server.HandleCORS {
		s.Router.Use(s.corsHandler())
	}
	s.mountResourceHandlers(s.Router)

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			log.Debug().Str("method", method).Str("route", route).Msg("route")
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			log.Debug().Err(err).Msg("unable to walk routes")
		}
	}
	return nil
}

func (s *SupportServer) mountResourceHandlers(r chi.Router) {
	r.Mount(apis.BasePath, apis.Router(s.svc))
	r.Get("/version", s.getVersion)
	r.Get("/ready", s.getReadiness)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
}

func (s *SupportServer) corsHandler() func(http.Handler) http.Handler {
	origins := s.cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type", "Content-Length", commonmiddleware.RequestIDHeader},
		ExposedHeaders: []string{"Location", commonmiddleware.RequestIDHeader},
		MaxAge:         300,
	})
}

type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

func (s *SupportServer) getVersion(w http.ResponseWriter, r *http.Request) {
	rsp := &GetVersionRsp{
		ServerVersion: "Support Tracker Server: " + ServerVersion,
		ApiVersion:    ApiVersion,
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}

func (s *SupportServer) getReadiness(w http.ResponseWriter, r *http.Request) {
	if err := s.gw.Ping(r.Context()); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("database ping failed during readiness check")
		httpx.SendJsonRsp(r.Context(), w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "database connection failed",
		})
		return
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
