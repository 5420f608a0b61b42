package bridge

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter returns the HTTP bridge: POST /translate takes a Message and
// always answers 200 with a Reply; GET /healthz reports liveness. Like the
// native host, it does not cancel a translation when the caller goes away.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger.With(zap.String("component", "http"))))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/translate", func(c *gin.Context) {
		var msg Message
		if err := c.ShouldBindJSON(&msg); err != nil {
			c.JSON(http.StatusOK, Reply{Error: "invalid request body: " + err.Error()})
			return
		}
		if msg.Type == "" {
			msg.Type = TypeTranslate
		}
		// The provider call runs to completion even if the client leaves.
		c.JSON(http.StatusOK, h.Handle(context.WithoutCancel(c.Request.Context()), msg))
	})

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
