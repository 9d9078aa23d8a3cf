package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"
	"wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 255
	persistTimeout       = 2 * time.Second
)

// bodyRecorder tees the response body so it can be stored for replay.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bodyRecorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a repeated Idempotency-Key on
// unsafe methods. Requests without the header pass through. A duplicate that
// arrives while the first is still running gets 409 REQ_001. 5xx responses
// are not stored, so the client may retry them. Cache failures let the
// request through.
func Idempotency(cache ports.IdempotencyCache, ttl time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			response.Error(c, apperror.Validation("Idempotency-Key must be at most 255 characters"))
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		cacheKey := c.Request.Method + ":" + c.Request.URL.Path + ":" + key
		logger := log.With().Str("idempotency_key", key).Logger()

		if replay(c, cache, cacheKey, logger) {
			return
		}

		reserved, err := cache.Reserve(ctx, cacheKey, ttl)
		if err != nil {
			logger.Warn().Err(err).Msg("idempotency reservation failed, processing without it")
			c.Next()
			return
		}
		if !reserved {
			// The first request may have finished between Get and Reserve.
			if replay(c, cache, cacheKey, logger) {
				return
			}
			response.Error(c, apperror.ErrRequestInProgress())
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()

		status := rec.Status()
		if status >= http.StatusInternalServerError {
			if err := cache.Release(persistCtx, cacheKey); err != nil {
				logger.Error().Err(err).Msg("failed to release idempotency key")
			}
			return
		}

		stored := &ports.StoredResponse{
			Status:      status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		}
		if err := cache.Set(persistCtx, cacheKey, stored, ttl); err != nil {
			logger.Error().Err(err).Msg("failed to persist idempotent response")
			if err := cache.Release(persistCtx, cacheKey); err != nil {
				logger.Error().Err(err).Msg("failed to release idempotency key")
			}
		}
	}
}

// replay writes the stored response for cacheKey, if any, and aborts the chain.
func replay(c *gin.Context, cache ports.IdempotencyCache, cacheKey string, log zerolog.Logger) bool {
	stored, err := cache.Get(c.Request.Context(), cacheKey)
	if err != nil {
		log.Warn().Err(err).Msg("idempotency lookup failed")
		return false
	}
	if stored == nil {
		return false
	}

	log.Info().Int("status", stored.Status).Msg("replaying idempotent response")
	c.Header(HeaderReplayed, "true")
	c.Data(stored.Status, stored.ContentType, stored.Body)
	c.Abort()
	return true
}
