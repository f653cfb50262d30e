package param

import "github.com/justyntemme/vst3host/pkg/vst3"

// Flags for parameters, bit-compatible with vst3.ParameterInfo flags
type Flags uint32

const (
	CanAutomate   Flags = Flags(vst3.ParameterCanAutomate)
	ReadOnly      Flags = Flags(vst3.ParameterIsReadOnly)
	WrapAround    Flags = Flags(vst3.ParameterIsWrapAround)
	List          Flags = Flags(vst3.ParameterIsList)
	Hidden        Flags = Flags(vst3.ParameterIsHidden)
	ProgramChange Flags = Flags(vst3.ParameterIsProgramChange)
	Bypass        Flags = Flags(vst3.ParameterIsBypass)
)

// Has reports whether every bit of f is set.
func (fl Flags) Has(f Flags) bool { return fl&f == f }

func (fl Flags) IsHidden() bool      { return fl.Has(Hidden) }
func (fl Flags) IsAutomatable() bool { return fl.Has(CanAutomate) }
func (fl Flags) IsWrapAround() bool  { return fl.Has(WrapAround) }
func (fl Flags) IsReadOnly() bool    { return fl.Has(ReadOnly) }
