package handler

import (
	"net/http"

	"docpipe/internal/domain"
)

// ModelCatalog lists the model profiles the service can meter.
type ModelCatalog interface {
	Models() []domain.ModelInfo
}

type ModelHandler struct {
	catalog      ModelCatalog
	defaultModel string
}

func NewModelHandler(catalog ModelCatalog, defaultModel string) *ModelHandler {
	return &ModelHandler{catalog: catalog, defaultModel: defaultModel}
}

type modelsResponse struct {
	DefaultModel string             `json:"defaultModel"`
	Models       []domain.ModelInfo `json:"models"`
}

// ListModels handles GET /api/v1/models.
func (h *ModelHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, modelsResponse{
		DefaultModel: h.defaultModel,
		Models:       h.catalog.Models(),
	})
}
