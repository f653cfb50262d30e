package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindModuleNotFound,
				Path:   "/plugins/Gain.vst3",
				Detail: "no loader",
			},
			contains: []string{"[load]", "module_not_found", "/plugins/Gain.vst3", "no loader"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseProcess,
				Kind:  KindNotActive,
			},
			contains: []string{"[process]", "not_active"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseState,
				Kind:   KindWriteFailed,
				Detail: "controller",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[state]", "write_failed", "controller", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Process(KindProcessFailed, cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause in chain")
	}
}

func TestError_Is(t *testing.T) {
	err := New(PhaseProcess, KindNotActive).Detail("buses not configured").Build()

	if !errors.Is(err, ErrNotActive) {
		t.Error("expected match on phase and kind")
	}
	if errors.Is(err, ErrProcessFailed) {
		t.Error("expected no match for different kind")
	}
	if errors.Is(err, &Error{Phase: PhaseBus, Kind: KindNotActive}) {
		t.Error("expected no match for different phase")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("rejected")
	err := New(PhaseBus, KindArrangementRejected).
		Path("inproc://gain").
		Value(3).
		Cause(cause).
		Detail("inputs %d", 2).
		Build()

	if err.Path != "inproc://gain" {
		t.Errorf("Path = %q", err.Path)
	}
	if err.Value != 3 {
		t.Errorf("Value = %v", err.Value)
	}
	if err.Detail != "inputs 2" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Cause != cause {
		t.Error("Cause not set")
	}
}

func TestKindOf(t *testing.T) {
	wrapped := Wrap(PhaseState, KindReadFailed, errors.New("eof"), "processor")
	if KindOf(wrapped) != KindReadFailed {
		t.Errorf("KindOf = %q", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("expected empty kind for plain error")
	}
	if UnknownParameter(9).Value != uint32(9) {
		t.Error("expected parameter id as value")
	}
}
