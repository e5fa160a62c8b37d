// Package handlers serves the read-only post graph API.
package handlers

import (
	"net/http"

	"github.com/TomerAberbach/website/application/queries/bus"
	"github.com/TomerAberbach/website/pkg/common"
	pkgerrors "github.com/TomerAberbach/website/pkg/errors"

	"go.uber.org/zap"
)

// built is implemented by query results computed from one graph build
type built interface {
	Build() string
}

// base holds what every handler needs to run a query and write its result
type base struct {
	queryBus *bus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

func newBase(queryBus *bus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	if errorHandler == nil {
		errorHandler = pkgerrors.NewErrorHandler(logger, false)
	}
	return base{queryBus: queryBus, errors: errorHandler, logger: logger}
}

// ask runs query and writes either its result or the error response
func (b base) ask(w http.ResponseWriter, r *http.Request, query bus.Query) {
	result, err := b.queryBus.Ask(r.Context(), query)
	if err != nil {
		b.errors.Handle(w, r, err)
		return
	}

	// The build the result came from, not whichever build is current now
	buildID := ""
	if v, ok := result.(built); ok {
		buildID = v.Build()
	}
	common.RespondWithMeta(w, http.StatusOK, result, common.NewMeta(r, buildID))
}
