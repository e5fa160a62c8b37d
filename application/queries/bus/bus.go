// Package bus dispatches read-only queries to their handlers through a chain
// of middleware.
package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	pkgerrors "github.com/TomerAberbach/website/pkg/errors"
)

// Query is a read-only request against the current graph snapshot
type Query interface {
	Validate() error
}

// QueryHandler answers one query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryHandlerFunc adapts a function to QueryHandler
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle implements QueryHandler
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// Middleware decorates a query handler
type Middleware interface {
	Wrap(next QueryHandler) QueryHandler
}

// QueryBus routes each query to the handler registered for its type
type QueryBus struct {
	mu         sync.RWMutex
	handlers   map[reflect.Type]QueryHandler
	middleware []Middleware
}

// NewQueryBus creates a query bus. The first middleware is outermost.
func NewQueryBus(middleware ...Middleware) *QueryBus {
	return &QueryBus{
		handlers:   make(map[reflect.Type]QueryHandler),
		middleware: middleware,
	}
}

// Register installs handler, wrapped in the bus middleware, for the type of query
func (b *QueryBus) Register(query Query, handler QueryHandler) error {
	t := reflect.TypeOf(query)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("query %s already has a handler", t.Name())
	}

	for i := len(b.middleware) - 1; i >= 0; i-- {
		handler = b.middleware[i].Wrap(handler)
	}
	b.handlers[t] = handler
	return nil
}

// Ask validates query and runs its handler. Handler errors are returned
// unchanged so callers can classify them.
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, pkgerrors.NewValidationError(err.Error()).WithCause(err)
	}

	b.mu.RLock()
	handler, ok := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("no handler for query %T", query))
	}

	return handler.Handle(ctx, query)
}

// Typed adapts a handler of one concrete query type
func Typed[Q Query, R any](handle func(ctx context.Context, query Q) (R, error)) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		q, ok := query.(Q)
		if !ok {
			return nil, fmt.Errorf("handler expects %T, got %T", *new(Q), query)
		}
		return handle(ctx, q)
	})
}

func queryName(query Query) string {
	return reflect.TypeOf(query).Name()
}
