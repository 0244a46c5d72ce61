package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	"github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/investify-pos/pkg/apperror"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo   repository.IdempotencyRepository
	Logger *zap.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// inFlight tracks keys whose request has not finished yet
type inFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func (f *inFlight) acquire(scope string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.keys[scope]; busy {
		return false
	}
	f.keys[scope] = struct{}{}
	return true
}

func (f *inFlight) release(scope string) {
	f.mu.Lock()
	delete(f.keys, scope)
	f.mu.Unlock()
}

// IdempotencyRequired requires an Idempotency-Key on POST requests and
// replays the stored response when a key is reused. Only successful
// responses are stored, so a failed request can be retried with its key.
// A key whose first request is still running is answered with 409.
func IdempotencyRequired(config IdempotencyConfig) gin.HandlerFunc {
	running := &inFlight{keys: make(map[string]struct{})}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			response.BadRequest(c, "Idempotency-Key header is required for this request")
			c.Abort()
			return
		}
		endpoint := c.Request.Method + " " + c.FullPath()

		scope := endpoint + "\x00" + idempotencyKey
		if !running.acquire(scope) {
			response.Error(c, apperror.NewConflictError("A request with this Idempotency-Key is still in progress"))
			c.Abort()
			return
		}
		defer running.release(scope)

		existing, err := config.Repo.GetByKey(c.Request.Context(), idempotencyKey, endpoint)
		if err != nil {
			config.Logger.Error("idempotency lookup failed", zap.String("key", idempotencyKey), zap.Error(err))
			response.InternalServerError(c, "Failed to check idempotency key")
			c.Abort()
			return
		}

		if existing != nil && !existing.IsExpired() {
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		if status := c.Writer.Status(); status >= 200 && status < 300 {
			ikey := &entity.IdempotencyKey{
				Key:          idempotencyKey,
				Endpoint:     endpoint,
				ResponseCode: status,
				ResponseBody: blw.body.String(),
				ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
			}
			if err := config.Repo.Create(c.Request.Context(), ikey); err != nil {
				config.Logger.Warn("idempotency key not stored", zap.String("key", idempotencyKey), zap.Error(err))
			}
		}
	}
}
