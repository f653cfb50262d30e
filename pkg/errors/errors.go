package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates which part of the plugin lifecycle produced the error
type Phase string

const (
	PhaseLoad      Phase = "load"      // module loading and initialization
	PhaseBus       Phase = "bus"       // bus negotiation
	PhaseProcess   Phase = "process"   // per-block processing
	PhaseState     Phase = "state"     // state save/restore
	PhaseParameter Phase = "parameter" // parameter access
	PhaseEditor    Phase = "editor"    // editor view handling
)

// Kind categorizes the error
type Kind string

const (
	KindModuleNotFound       Kind = "module_not_found"
	KindNoProcessorClass     Kind = "no_processor_class"
	KindInitializationFailed Kind = "initialization_failed"
	KindTooManyBuses         Kind = "too_many_buses"
	KindBusQueryFailed       Kind = "bus_query_failed"
	KindArrangementRejected  Kind = "arrangement_rejected"
	KindSetupRejected        Kind = "setup_rejected"
	KindActivationFailed     Kind = "activation_failed"
	KindNotActive            Kind = "not_active"
	KindProcessFailed        Kind = "process_failed"
	KindProcessingActive     Kind = "processing_active"
	KindReadFailed           Kind = "read_failed"
	KindWriteFailed          Kind = "write_failed"
	KindReleased             Kind = "released"
	KindUnknownParameter     Kind = "unknown_parameter"
	KindNoView               Kind = "no_view"
	KindPlatformUnsupported  Kind = "platform_unsupported"
	KindAttachFailed         Kind = "attach_failed"
	KindInvalidState         Kind = "invalid_state"
)

// Sentinels for errors.Is checks
var (
	ErrNotActive        = &Error{Phase: PhaseProcess, Kind: KindNotActive}
	ErrProcessFailed    = &Error{Phase: PhaseProcess, Kind: KindProcessFailed}
	ErrProcessingActive = &Error{Phase: PhaseState, Kind: KindProcessingActive}
	ErrReleased         = &Error{Phase: PhaseState, Kind: KindReleased}
)

// Error is the structured error type used throughout the host
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Path   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the plugin path
func (b *Builder) Path(path string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Load creates a load phase error for the module at path
func Load(kind Kind, path string, cause error) *Error {
	return &Error{
		Phase: PhaseLoad,
		Kind:  kind,
		Path:  path,
		Cause: cause,
	}
}

// Bus creates a bus configuration error
func Bus(kind Kind, detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseBus,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Process creates a processing error
func Process(kind Kind, cause error) *Error {
	return &Error{
		Phase: PhaseProcess,
		Kind:  kind,
		Cause: cause,
	}
}

// State creates a state serialization error
func State(kind Kind, detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseState,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// UnknownParameter creates an error for an id the plugin did not report
func UnknownParameter(id uint32) *Error {
	return &Error{
		Phase:  PhaseParameter,
		Kind:   KindUnknownParameter,
		Detail: fmt.Sprintf("parameter %d not reported by the controller", id),
		Value:  id,
	}
}

// Editor creates an editor error
func Editor(kind Kind, cause error) *Error {
	return &Error{
		Phase: PhaseEditor,
		Kind:  kind,
		Cause: cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
