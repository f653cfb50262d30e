package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/justyntemme/vst3host/pkg/vst3"
)

// Parameter represents a plugin parameter
type Parameter struct {
	ID           uint32
	Name         string
	ShortName    string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64
	StepCount    int32
	Flags        Flags
	UnitID       int32

	// normalized value as float64 bits, read lock-free by the audio thread
	value atomic.Uint64

	formatFunc func(float64) string
}

// New creates a parameter with a plain range and a normalized default.
func New(id uint32, name string, lo, hi, def float64, flags Flags) *Parameter {
	p := &Parameter{
		ID:           id,
		Name:         name,
		ShortName:    name,
		Min:          lo,
		Max:          hi,
		DefaultValue: def,
		Flags:        flags,
	}
	p.SetValue(def)
	return p
}

// GetValue returns the current normalized value (0-1)
func (p *Parameter) GetValue() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue sets the normalized value, clamped to 0-1
func (p *Parameter) SetValue(value float64) {
	if value < 0 || math.IsNaN(value) {
		value = 0
	} else if value > 1 {
		value = 1
	}
	p.value.Store(math.Float64bits(value))
}

// GetPlainValue converts normalized to plain value
func (p *Parameter) GetPlainValue() float64 {
	return p.Denormalize(p.GetValue())
}

// SetFormatter sets custom value formatting
func (p *Parameter) SetFormatter(format func(plain float64) string) *Parameter {
	p.formatFunc = format
	return p
}

// FormatValue returns formatted parameter value
func (p *Parameter) FormatValue(normalized float64) string {
	plain := p.Denormalize(normalized)
	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}
	if p.StepCount > 0 {
		return fmt.Sprintf("%.0f", plain)
	}
	s := fmt.Sprintf("%.2f", plain)
	if p.Unit != "" {
		s += " " + p.Unit
	}
	return s
}

// ParseValue parses a plain value string to normalized
func (p *Parameter) ParseValue(str string) (float64, error) {
	plain, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, err
	}
	return p.Normalize(plain), nil
}

// Normalize converts plain value to normalized (0-1)
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	return min(max((plain-p.Min)/(p.Max-p.Min), 0), 1)
}

// Denormalize converts normalized (0-1) to plain value
func (p *Parameter) Denormalize(normalized float64) float64 {
	return p.Min + normalized*(p.Max-p.Min)
}

// Info describes the parameter to the host.
func (p *Parameter) Info() vst3.ParameterInfo {
	return vst3.ParameterInfo{
		ID:           p.ID,
		Title:        p.Name,
		ShortTitle:   p.ShortName,
		Units:        p.Unit,
		StepCount:    p.StepCount,
		DefaultValue: p.DefaultValue,
		UnitID:       p.UnitID,
		Flags:        int32(p.Flags),
	}
}
