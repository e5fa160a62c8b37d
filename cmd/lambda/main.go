// Command lambda serves the graph API from AWS Lambda behind an API Gateway
// HTTP API.
package main

import (
	"context"
	"log"
	"time"

	"github.com/TomerAberbach/website/infrastructure/config"
	"github.com/TomerAberbach/website/infrastructure/di"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// proxy adapts the chi router to API Gateway v2 events
type proxy struct {
	adapter       *chiadapter.ChiLambdaV2
	logger        *zap.Logger
	coldStart     bool
	coldStartTime time.Time
}

// newProxy wires the application and starts the first graph build. The build
// runs once per container and is shared by every invocation.
func newProxy(ctx context.Context, cfg *config.Config) (*proxy, func(), error) {
	start := time.Now()

	// Posts are bundled with the function and never change at runtime
	cfg.WatchContent = false

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if container.Watcher != nil {
		container.Watcher.Stop()
	}
	container.GraphService.Start(ctx)

	mux, ok := container.Router.Setup().(*chi.Mux)
	if !ok {
		cleanup()
		log.Fatal("router is not a chi.Mux")
	}

	container.Logger.Info("Lambda initialized", zap.Duration("duration", time.Since(start)))
	return &proxy{
		adapter:       chiadapter.NewV2(mux),
		logger:        container.Logger,
		coldStart:     true,
		coldStartTime: start,
	}, cleanup, nil
}

// Handle is the Lambda function handler
func (p *proxy) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp, err := p.adapter.ProxyWithContextV2(ctx, req)
	if err != nil {
		p.logger.Error("Lambda proxy failed",
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.String("requestID", req.RequestContext.RequestID),
			zap.Error(err),
		)
		return resp, err
	}

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if p.coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		resp.Headers["X-Cold-Start-Duration"] = time.Since(p.coldStartTime).String()
		p.coldStart = false
	} else {
		resp.Headers["X-Cold-Start"] = "false"
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Lambda-Request-ID"] = req.RequestContext.RequestID
	}

	p.logger.Debug("Lambda response",
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	p, cleanup, err := newProxy(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer cleanup()

	lambda.Start(p.Handle)
}
