package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"docpipe/internal/domain"
)

// RouterConfig carries what the router needs besides the handlers.
type RouterConfig struct {
	CORSOrigins []string
	Metrics     http.Handler
	Logger      domain.Logger
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(documentHandler *DocumentHandler, modelHandler *ModelHandler, cfg RouterConfig) http.Handler {
	router := mux.NewRouter()
	router.Use(Recoverer(cfg.Logger), RequestLogger(cfg.Logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "docpipe"})
	}).Methods(http.MethodGet)

	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/documents/process", documentHandler.ProcessDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents/reoptimize", documentHandler.ReoptimizeDocument).Methods(http.MethodPost)
	api.HandleFunc("/models", modelHandler.ListModels).Methods(http.MethodGet)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
		},
		MaxAge: 300,
	})

	return c.Handler(router)
}
