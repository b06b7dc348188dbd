// Package api is the HTTP transport: a gin engine serving the GraphQL
// endpoint, health and metrics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"membergraph/backend/internal/constants"
	"membergraph/backend/internal/gql"
	"membergraph/backend/internal/metrics"
)

// Executor runs GraphQL requests
type Executor interface {
	Execute(ctx context.Context, req gql.Request) *gql.Response
}

// Options configures the router
type Options struct {
	Executor       Executor
	Metrics        *metrics.Collector
	Logger         *zap.Logger
	RequestTimeout time.Duration
	Production     bool
}

// NewRouter builds the gin engine
func NewRouter(opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())
	router.Use(cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	router.POST(constants.GraphQLPath, graphqlHandler(opts.Executor, opts.RequestTimeout, log))

	return router
}

func graphqlHandler(exec Executor, timeout time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxRequestBodyBytes)

		var req gql.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		resp, err := execute(ctx, exec, req)
		if err != nil {
			log.Error("Failed to execute GraphQL query",
				zap.String("operation_name", req.OperationName),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to execute GraphQL query"})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// execute turns an executor panic into an error
func execute(ctx context.Context, exec Executor, req gql.Request) (resp *gql.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor panic: %v", r)
		}
	}()
	return exec.Execute(ctx, req), nil
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// ginLogger writes one zap line per request
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
