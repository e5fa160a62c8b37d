package handlers

import (
	"net/http"

	"github.com/TomerAberbach/website/application/queries"
	"github.com/TomerAberbach/website/application/queries/bus"
	pkgerrors "github.com/TomerAberbach/website/pkg/errors"

	"go.uber.org/zap"
)

// TagHandler handles tag-related HTTP requests
type TagHandler struct {
	base
}

// NewTagHandler creates a new tag handler
func NewTagHandler(queryBus *bus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *TagHandler {
	return &TagHandler{base: newBase(queryBus, errorHandler, logger)}
}

// ListTags handles GET /tags
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.ListTagsQuery{})
}
