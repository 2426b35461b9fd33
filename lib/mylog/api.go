package mylog

import "context"

type Severity string

const (
	SeverityDebug Severity = "DEBUG"
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// New creates the logger for one component of the connector ("relay",
// "infinityclient", "configapi", ...). The implementation is chosen at
// startup: plain stderr lines locally, structured JSON on Google Cloud.
var New func(name string) Logger

// Logger is the leveled logger used throughout the connector. The trace
// label ties related lines together, typically a message id or client id;
// pass "" when there is none.
type Logger interface {
	Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any)
}
