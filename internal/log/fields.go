package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldKind        = "kind"
	FieldRecordID    = "record_id"
	FieldAmountCents = "amount_cents"
	FieldCount       = "count"
)

const (
	ComponentApp          = "app"
	ComponentHTTP         = "http"
	ComponentStore        = "store"
	ComponentStorage      = "storage"
	ComponentNotify       = "notify"
	ComponentViewModel    = "viewmodel"
	ComponentAMQP         = "amqp"
	ComponentCache        = "cache"
	ComponentSeeder       = "seeder"
	ComponentSubscription = "subscription_processor"
	ComponentCLI          = "cli"
)

const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpSeed     = "seed"
	OpProcess  = "process"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields builds slog key/value pairs.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the kind and id of the record a log line is about.
func (f LogFields) WithRecord(kind string, id string) LogFields {
	f[FieldKind] = kind
	if id != "" {
		f[FieldRecordID] = id
	}
	return f
}

func (f LogFields) WithAmount(cents int64) LogFields {
	f[FieldAmountCents] = cents
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
