package log

import "salarycalc/internal/core"

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldCountry    = "country"
	FieldLanguage   = "language"
	FieldExperience = "experience"
	FieldEntryCount = "entry_count"
	FieldExportID   = "export_id"
	FieldExportRef  = "export_ref"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentQuery     = "query"
	ComponentExport    = "export"
	ComponentStorage   = "storage"
	ComponentSource    = "source"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTemplate  = "template"
)

const (
	OpList      = "list"
	OpQuery     = "query"
	OpStats     = "stats"
	OpHistogram = "histogram"
	OpExport    = "export"
	OpImport    = "import"
	OpRender    = "render"
)

// LogFields is a small builder for slog key/value pairs.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
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

// WithFilter records only the filter parts that are set.
func (f LogFields) WithFilter(filter core.Filter) LogFields {
	if filter.Country != "" {
		f[FieldCountry] = filter.Country
	}
	if filter.Language != "" {
		f[FieldLanguage] = filter.Language
	}
	if filter.Experience != "" {
		f[FieldExperience] = filter.Experience
	}
	return f
}

func (f LogFields) WithEntryCount(n int) LogFields {
	f[FieldEntryCount] = n
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
