package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hearth-ai/hearth/pkg/httputil"
	"github.com/hearth-ai/hearth/pkg/observability"
	"github.com/hearth-ai/hearth/pkg/runtime"
)

// Server exposes the plugin runtime over HTTP
type Server struct {
	manager *runtime.Manager
	metrics *observability.Metrics
	log     *logrus.Logger
	router  *mux.Router
}

// NewServer builds the API server and its routes
func NewServer(manager *runtime.Manager, metrics *observability.Metrics, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	s := &Server{
		manager: manager,
		metrics: metrics,
		log:     log,
		router:  mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(httputil.RecoveryMiddleware(s.log))
	s.router.Use(httputil.LoggingMiddleware(s.log))
	if s.metrics != nil {
		s.router.Use(s.metrics.HTTPMiddleware)
	}

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/plugins", s.listPlugins).Methods("GET")
	api.HandleFunc("/plugins/{name}", s.getPlugin).Methods("GET")
	api.HandleFunc("/plugins/{name}/load", s.loadPlugin).Methods("POST")
	api.HandleFunc("/plugins/{name}/unload", s.unloadPlugin).Methods("POST")
	api.HandleFunc("/capabilities", s.listCapabilities).Methods("GET")
	api.HandleFunc("/capabilities/search", s.searchCapabilities).Methods("GET")
	api.HandleFunc("/tools", s.listTools).Methods("GET")
	api.HandleFunc("/execute", s.execute).Methods("POST")

	s.router.HandleFunc("/healthz", s.healthz).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
