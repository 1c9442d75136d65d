package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldCardSlug   = "card_slug"
	FieldCardID     = "card_id"
	FieldPlatform   = "platform"
	FieldPostID     = "post_id"
	FieldSecretName = "secret_name"
	FieldCategory   = "category"
	FieldEndpoint   = "endpoint"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentCatalog   = "catalog"
	ComponentGenius    = "genius"
	ComponentSecrets   = "secrets"
	ComponentLLM       = "llm"
	ComponentReport    = "report"
	ComponentScheduler = "scheduler"
	ComponentCalendar  = "calendar"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpDelete   = "delete"
	OpList     = "list"
	OpScore    = "score"
	OpSearch   = "search"
	OpCompose  = "compose"
	OpPublish  = "publish"
	OpAppend   = "append"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithCard adds card identity fields
func (f LogFields) WithCard(slug string, id int64) LogFields {
	f[FieldCardSlug] = slug
	if id != 0 {
		f[FieldCardID] = id
	}
	return f
}

// WithPost adds scheduled-post fields
func (f LogFields) WithPost(id int64, platform string) LogFields {
	f[FieldPostID] = id
	f[FieldPlatform] = platform
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
