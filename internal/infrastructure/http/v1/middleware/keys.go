package middleware

// Keys stored on the gin context by the middleware chain.
const (
	KeyUserID    = "user_id"
	KeyShop      = "shop"
	KeyRequestID = "request_id"
	KeyTraceID   = "trace_id"

	keyIdempotencyKey   = "idempotency_key"
	keyIdempotencyStore = "idempotency_store"
)
