package handlers

import (
	"net/http"

	"github.com/TomerAberbach/website/application/queries"
	"github.com/TomerAberbach/website/application/queries/bus"
	pkgerrors "github.com/TomerAberbach/website/pkg/errors"

	"go.uber.org/zap"
)

// GraphHandler handles graph-related HTTP requests
type GraphHandler struct {
	base
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(queryBus *bus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{base: newBase(queryBus, errorHandler, logger)}
}

// GetGraph handles GET /graph
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetGraphQuery{})
}
