package server

import (
	"log/slog"
	"net/http"

	"revenue-forecast/internal/handlers"
	"revenue-forecast/internal/services"
)

type Server struct {
	engine *services.Engine
	mux    *http.ServeMux
	logger *slog.Logger
	api    *handlers.APIHandlers
}

func New(engine *services.Engine, logger *slog.Logger, maxUploadBytes int64) *Server {
	s := &Server{
		engine: engine,
		mux:    http.NewServeMux(),
		logger: logger,
		api:    handlers.NewAPIHandlers(engine, logger, maxUploadBytes),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.api.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.api.HandleStats)

	s.mux.HandleFunc("POST /upload", s.api.HandleUpload)
	s.mux.HandleFunc("GET /products", s.api.HandleProducts)
	s.mux.HandleFunc("GET /history", s.api.HandleHistory)
	s.mux.HandleFunc("POST /forecast", s.api.HandleForecast)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
