package utils

const (
	// ClaimsKey is the gin context key used for storing JWT claims.
	ClaimsKey = "claims"

	// TraceIdKey is the gin context key used for the per-request trace id.
	TraceIdKey = "traceId"

	// SanitizedPayloadKey is the gin context key for the validated request body.
	SanitizedPayloadKey = "sanitizedPayload"
)
