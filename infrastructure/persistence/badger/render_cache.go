// Package badger persists rendered post content in BadgerDB so unchanged
// posts are not re-rendered across process restarts.
package badger

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/TomerAberbach/website/application/ports"
	pkgerrors "github.com/TomerAberbach/website/pkg/errors"

	badgerdb "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const keyPrefix = "render:"

// Options configures the render cache
type Options struct {
	// Dir is the directory for BadgerDB data files. Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence
	InMemory bool
}

// RenderCache is a ports.RenderCache backed by BadgerDB
type RenderCache struct {
	db     *badgerdb.DB
	logger *zap.Logger
}

// NewRenderCache opens the render cache
func NewRenderCache(opts Options, logger *zap.Logger) (*RenderCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("render cache: Dir is required for on-disk mode")
	}

	dbOpts := badgerdb.DefaultOptions(opts.Dir).
		WithLogger(zapLogger{logger.Sugar().Named("badger")})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}

	db, err := badgerdb.Open(dbOpts)
	if err != nil {
		return nil, pkgerrors.NewStorageError("open render cache", err)
	}
	return &RenderCache{db: db, logger: logger}, nil
}

// Get returns the rendered content stored under digest
func (c *RenderCache) Get(_ context.Context, digest string) (*ports.Rendered, bool, error) {
	var val []byte
	err := c.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + digest))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, pkgerrors.NewStorageError("get rendered content", err)
	}

	var rendered ports.Rendered
	if err := json.Unmarshal(val, &rendered); err != nil {
		// A corrupt entry is re-rendered and overwritten
		c.logger.Warn("Discarding unreadable render cache entry",
			zap.String("digest", digest),
			zap.Error(err),
		)
		return nil, false, nil
	}
	return &rendered, true, nil
}

// Put stores rendered content under digest
func (c *RenderCache) Put(_ context.Context, digest string, rendered *ports.Rendered) error {
	val, err := json.Marshal(rendered)
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode rendered content").WithCause(err)
	}
	err = c.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keyPrefix+digest), val)
	})
	if err != nil {
		return pkgerrors.NewStorageError("put rendered content", err)
	}
	return nil
}

// Close closes the underlying database
func (c *RenderCache) Close() error {
	return c.db.Close()
}

// zapLogger adapts zap to badger.Logger. Badger's info output is routine
// housekeeping, so it is logged at debug level.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }
func (l zapLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l zapLogger) Infof(format string, args ...interface{})    { l.s.Debugf(format, args...) }
func (l zapLogger) Debugf(format string, args ...interface{})   { l.s.Debugf(format, args...) }
