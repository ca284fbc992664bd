// Package httpserver serves stored item photos over HTTP.
package httpserver

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/stockkeeper/internal/blob"
	"github.com/and161185/stockkeeper/internal/errs"
)

// New wires the gin engine: GET /blobs/*path and GET /healthz.
func New(store blob.Store, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	h := &blobHandler{store: store, logger: logger}
	r.GET("/blobs/*path", h.Get)
	r.HEAD("/blobs/*path", h.Get)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	logger.Info("router initialized")
	return r
}

type blobHandler struct {
	store  blob.Store
	logger *zap.Logger
}

// Get streams the blob with its stored content type.
func (h *blobHandler) Get(c *gin.Context) {
	p, ok := blob.CleanPath(c.Param("path"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid path"})
		return
	}
	rc, contentType, err := h.store.Open(c.Request.Context(), p)
	if errors.Is(err, errs.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		h.logger.Error("open blob", zap.String("path", p), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read blob"})
		return
	}
	defer rc.Close()

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=300")
	c.Status(http.StatusOK)
	if c.Request.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.logger.Warn("stream blob", zap.String("path", p), zap.Error(err))
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
