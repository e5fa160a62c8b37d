// Package content is the filesystem post repository. Each post is a markdown
// file named after its ID with a YAML front matter block.
package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TomerAberbach/website/application/ports"
	"github.com/TomerAberbach/website/domain/core/entities"
	"github.com/TomerAberbach/website/domain/core/valueobjects"
	"github.com/TomerAberbach/website/domain/services/references"
	pkgerrors "github.com/TomerAberbach/website/pkg/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const postExtension = ".md"

// Options configures the repository
type Options struct {
	Dir           string
	IncludeDrafts bool
	Concurrency   int
}

// Repository reads posts from a directory
type Repository struct {
	opts     Options
	parser   *references.Parser
	renderer *Renderer
	schema   *Schema
	cache    ports.RenderCache
	metrics  ports.MetricsRecorder
	logger   *zap.Logger
}

// NewRepository creates a new filesystem post repository. cache may be nil.
func NewRepository(
	opts Options,
	parser *references.Parser,
	renderer *Renderer,
	schema *Schema,
	cache ports.RenderCache,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) *Repository {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		opts:     opts,
		parser:   parser,
		renderer: renderer,
		schema:   schema,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// List reads, renders, and parses every post, newest first with ties broken by ID
func (r *Repository) List(ctx context.Context) ([]*entities.Post, error) {
	ctx, span := otel.Tracer("github.com/TomerAberbach/website/infrastructure/content").
		Start(ctx, "content.list")
	defer span.End()

	entries, err := os.ReadDir(r.opts.Dir)
	if err != nil {
		return nil, pkgerrors.NewStorageError("read content directory", err).
			WithDetail("dir", r.opts.Dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != postExtension {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	span.SetAttributes(attribute.Int("content.files", len(files)))

	parsed := make([]*entities.Post, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, name := range files {
		g.Go(func() error {
			post, err := r.load(gctx, name)
			if err != nil {
				return err
			}
			parsed[i] = post
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	posts := make([]*entities.Post, 0, len(parsed))
	for _, post := range parsed {
		if post != nil {
			posts = append(posts, post)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].Precedes(posts[j])
	})

	r.logger.Debug("Loaded posts",
		zap.Int("fileCount", len(files)),
		zap.Int("postCount", len(posts)),
	)
	return posts, nil
}

// load parses one post file. Drafts are skipped unless IncludeDrafts is set.
func (r *Repository) load(ctx context.Context, name string) (*entities.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slug := strings.TrimSuffix(name, postExtension)
	invalid := func(message string, cause error) *pkgerrors.AppError {
		appErr := pkgerrors.NewValidationError(message).WithDetail("file", name)
		if cause != nil {
			appErr = appErr.WithCause(cause).WithDetail("reason", cause.Error())
		}
		return appErr
	}

	id, err := valueobjects.NewPostID(slug)
	if err != nil {
		return nil, invalid("invalid post file name", err)
	}

	source, err := os.ReadFile(filepath.Join(r.opts.Dir, name))
	if err != nil {
		return nil, pkgerrors.NewStorageError("read post", err).WithDetail("file", name)
	}

	meta, body, err := splitFrontMatter(source)
	if err != nil {
		return nil, invalid("invalid post", err)
	}
	fm, err := decodeFrontMatter(meta, r.schema)
	if err != nil {
		return nil, invalid("invalid front matter", err)
	}
	if fm.Draft && !r.opts.IncludeDrafts {
		r.logger.Debug("Skipping draft", zap.String("postID", id.String()))
		return nil, nil
	}

	date, err := parseDate(fm.Date)
	if err != nil {
		return nil, invalid("invalid front matter", err)
	}

	rendered, err := r.render(ctx, body)
	if err != nil {
		return nil, err
	}

	refs, err := r.parser.Parse(rendered.Hrefs)
	if err != nil {
		if errors.Is(err, references.ErrMalformedHref) {
			return nil, invalid("malformed link", err).WithDetail("postID", id.String())
		}
		return nil, err
	}

	post, err := entities.NewPost(id, entities.PostContent{
		Title:       fm.Title,
		Description: fm.Description,
		Date:        date,
		Tags:        fm.Tags,
		HTML:        rendered.HTML,
		Draft:       fm.Draft,
	}, refs)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// render renders markdown through the render cache when one is configured.
// Cache failures fall back to rendering.
func (r *Repository) render(ctx context.Context, body []byte) (*ports.Rendered, error) {
	if r.cache == nil {
		return r.renderer.Render(body)
	}

	sum := sha256.Sum256(body)
	digest := hex.EncodeToString(sum[:])

	cached, ok, err := r.cache.Get(ctx, digest)
	if err != nil {
		r.logger.Warn("Render cache read failed", zap.String("digest", digest), zap.Error(err))
	}
	r.metrics.RecordRenderCache(ok)
	if ok {
		return cached, nil
	}

	rendered, err := r.renderer.Render(body)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Put(ctx, digest, rendered); err != nil {
		r.logger.Warn("Render cache write failed", zap.String("digest", digest), zap.Error(err))
	}
	return rendered, nil
}
