// Package errors provides the structured error type used by the host.
//
// Errors are categorized by Phase (which part of the plugin lifecycle failed)
// and Kind (what went wrong). The Error type carries the plugin path, the
// offending value, a detail message and the cause chain.
//
// Use the Builder for structured construction:
//
//	err := errors.New(errors.PhaseBus, errors.KindArrangementRejected).
//		Path("/Library/Audio/Plug-Ins/VST3/Gain.vst3").
//		Cause(res).
//		Detail("input arrangements %v", arr).
//		Build()
//
// Or one of the convenience constructors:
//
//	err := errors.Load(errors.KindModuleNotFound, path, cause)
//
// All errors implement the standard error interface and support errors.Is/As.
// Is matches on Phase and Kind only, so a bare template works as a sentinel:
//
//	if errors.Is(err, errors.ErrNotActive) { ... }
package errors
