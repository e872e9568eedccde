package utils

import (
	"context"
	"time"
)

// Context keys used to carry request metadata across layers
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
	TimeoutKey   ContextKey = "timeout"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Upload limits for generation requests
const (
	MaxUploadFiles    = 10
	MaxUploadFileSize = 10 * 1024 * 1024 // 10MB
)

// Pagination defaults
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// DefaultRequestTimeout bounds non-generation handlers
const DefaultRequestTimeout = 30 * time.Second

// RequestIDFromContext returns the request id stored by the HTTP layer, if any
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}
