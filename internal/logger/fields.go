package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, carried on the context logger through a call chain.
const (
	// FieldRequestID is the X-Request-Id of the HTTP exchange
	FieldRequestID = "request_id"

	// FieldComponent names the subsystem that logged (cli, devserver, repository, blob)
	FieldComponent = "component"

	// FieldOperation is the API operation, e.g. upload_file or list_buckets
	FieldOperation = "operation"

	// FieldDC is the data center slug
	FieldDC = "dc"

	// FieldBucket is the bucket name
	FieldBucket = "bucket"

	// FieldObject is the in-bucket object path
	FieldObject = "object"
)

// Metric fields, attached per entry for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldClientIP   = "client_ip"
)
