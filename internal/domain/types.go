package domain

// ActionKind names a scenario action as it appears in scenario files
type ActionKind string

const (
	ActionExploit     ActionKind = "exploit"
	ActionMoveLateral ActionKind = "move_lateral"
	ActionExfiltrate  ActionKind = "exfiltrate"
)

// Terminal result labels produced by the engine itself. Scenario content may
// end a run with any other label.
const (
	ResultNoSteps       = "no_steps"
	ResultUnknownAction = "unknown_action"
	ResultMaxSteps      = "max_steps"
)

// Event tags recorded on detection outcomes
const (
	EventExfilAlert = "ALERT.EXFIL"
)

// Parameter defaults applied when a scenario omits a value
const (
	DefaultEndpoint    = "unknown"
	DefaultTechnique   = "generic"
	DefaultBaseSuccess = 0.5
)

// LogLevel represents log levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)
