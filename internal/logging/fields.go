package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldComponent = "component"
	FieldUserID    = "user_id"
	FieldRequestor = "requestor_id"
	FieldContextID = "context_id"
	FieldJobID     = "job_id"
	FieldReportKey = "report_key"
	FieldFilename  = "filename"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldEvents    = "event_count"
)

// Component returns a slog attribute naming the emitting component.
func Component(name string) slog.Attr {
	return slog.String(FieldComponent, name)
}

// UserID returns a slog attribute for the subject user ID.
func UserID(id int64) slog.Attr {
	return slog.Int64(FieldUserID, id)
}

// RequestorID returns a slog attribute for the requesting user ID.
func RequestorID(id int64) slog.Attr {
	return slog.Int64(FieldRequestor, id)
}

// JobID returns a slog attribute for the report job ID.
func JobID(id string) slog.Attr {
	return slog.String(FieldJobID, id)
}

// ReportKey returns a slog attribute for the (user, range) report key.
func ReportKey(key string) slog.Attr {
	return slog.String(FieldReportKey, key)
}

// Filename returns a slog attribute for a report artifact filename.
func Filename(name string) slog.Attr {
	return slog.String(FieldFilename, name)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// EventCount returns a slog attribute for the number of log events scanned.
func EventCount(n int) slog.Attr {
	return slog.Int(FieldEvents, n)
}
