package handlers

import (
	"net/http"

	"github.com/TomerAberbach/website/application/queries"
	"github.com/TomerAberbach/website/application/queries/bus"
	pkgerrors "github.com/TomerAberbach/website/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	base
}

// NewPostHandler creates a new post handler
func NewPostHandler(queryBus *bus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *PostHandler {
	return &PostHandler{base: newBase(queryBus, errorHandler, logger)}
}

// ListPosts handles GET /posts with an optional tag filter
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	query := queries.ListPostsQuery{}
	if values, ok := r.URL.Query()["tag"]; ok && len(values) > 0 {
		query.Tag = values[0]
		if query.Tag == "" {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("tag cannot be blank"))
			return
		}
	}
	h.ask(w, r, query)
}

// GetPost handles GET /posts/{postID}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	h.logger.Debug("Getting post", zap.String("postID", postID))
	h.ask(w, r, queries.GetPostQuery{PostID: postID})
}
