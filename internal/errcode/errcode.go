package errcode

// Codes returned in the "code" field of every error response.
// 4xx codes are client mistakes the caller can fix; 5xx codes are server failures.
const (
	MalformedDocument = "malformed_document"
	InvalidMargins    = "invalid_margins"
	InvalidKey        = "invalid_key"
	ValidationError   = "validation_error"
	Unauthorized      = "unauthorized"
	NotFound          = "not_found"
	RenderFailure     = "render_failure"
	StorageIO         = "storage_io"
	Internal          = "internal"
)
