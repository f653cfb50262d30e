// Package inproc hosts plugins written in Go inside the host process.
//
// Plugins register under a name and are opened with an "inproc://<name>"
// path through the regular module loader, so they go through exactly the
// same load, negotiation and processing sequence as a binary module. Each
// plugin is exposed as a split pair: a processing Component and an edit
// Controller that talk to each other over connection points.
package inproc

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/justyntemme/vst3host/pkg/bus"
	"github.com/justyntemme/vst3host/pkg/param"
	"github.com/justyntemme/vst3host/pkg/process"
	"github.com/justyntemme/vst3host/pkg/vst3"
)

// Scheme prefixes in-process module paths.
const Scheme = "inproc://"

// Info contains plugin metadata
type Info struct {
	ID      string // Unique plugin identifier (e.g., "com.example.gain")
	Name    string
	Version string
	Vendor  string
}

// UID converts the string ID to a 16-byte class id
func (i Info) UID() vst3.TUID {
	var uid vst3.TUID
	copy(uid[:], i.ID)
	return uid
}

// ControllerUID derives the controller class id from the processor's.
func (i Info) ControllerUID() vst3.TUID {
	uid := i.UID()
	uid[15] ^= 0xFF
	return uid
}

// ClassInfos describes the processor and controller classes of the plugin.
func (i Info) ClassInfos() []vst3.ClassInfo {
	return []vst3.ClassInfo{
		{
			ID:       i.UID(),
			Name:     i.Name,
			Category: vst3.CategoryAudioEffect,
			Vendor:   i.Vendor,
			Version:  i.Version,
		},
		{
			ID:       i.ControllerUID(),
			Name:     i.Name + " Controller",
			Category: vst3.CategoryComponentController,
			Vendor:   i.Vendor,
			Version:  i.Version,
		},
	}
}

// Plugin is the interface in-process plugins implement
type Plugin interface {
	GetInfo() Info
	CreateProcessor() Processor
}

// Processor handles the actual audio processing
type Processor interface {
	// Initialize is called from SetupProcessing
	Initialize(sampleRate float64, maxBlockSize int32) error

	// ProcessAudio processes one block without allocating
	ProcessAudio(ctx *process.Context)

	GetParameters() *param.Registry
	GetBuses() *bus.Configuration

	// SetActive is called when the component is activated or deactivated
	SetActive(active bool) error

	GetLatencySamples() int32
	GetTailSamples() int32
}

var (
	pluginsMu sync.RWMutex
	plugins   = make(map[string]Plugin)
)

// Register makes p loadable as Scheme+name.
func Register(name string, p Plugin) {
	pluginsMu.Lock()
	defer pluginsMu.Unlock()
	plugins[name] = p
}

// Names lists the registered plugins.
func Names() []string {
	pluginsMu.RLock()
	defer pluginsMu.RUnlock()
	names := make([]string, 0, len(plugins))
	for n := range plugins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Plugin, bool) {
	pluginsMu.RLock()
	defer pluginsMu.RUnlock()
	p, ok := plugins[name]
	return p, ok
}

// Loader opens in-process modules.
type Loader struct{}

// CanOpen reports whether path uses the in-process scheme.
func (Loader) CanOpen(path string) bool {
	return strings.HasPrefix(path, Scheme)
}

// Open resolves the registered plugin named by path.
func (Loader) Open(path string) (vst3.Module, error) {
	name := strings.TrimPrefix(path, Scheme)
	p, ok := lookup(name)
	if !ok {
		return nil, fmt.Errorf("no in-process plugin named %q", name)
	}
	return &module{path: path, factory: &factory{plugin: p}}, nil
}

func init() {
	vst3.RegisterLoader(Loader{})
}

type module struct {
	path    string
	factory *factory
}

func (m *module) Path() string                { return m.path }
func (m *module) Factory() vst3.PluginFactory { return m.factory }
func (m *module) Close() error                { return nil }

type factory struct {
	plugin Plugin
}

func (f *factory) ClassInfos() []vst3.ClassInfo {
	return f.plugin.GetInfo().ClassInfos()
}

func (f *factory) CreateComponent(cid vst3.TUID) (vst3.IComponent, error) {
	info := f.plugin.GetInfo()
	if cid != info.UID() {
		return nil, vst3.ResultNoInterface
	}
	return NewComponent(info, f.plugin.CreateProcessor()), nil
}

func (f *factory) CreateController(cid vst3.TUID) (vst3.IEditController, error) {
	info := f.plugin.GetInfo()
	if cid != info.ControllerUID() {
		return nil, vst3.ResultNoInterface
	}
	// A throwaway processor supplies the parameter definitions
	return NewController(f.plugin.CreateProcessor().GetParameters()), nil
}
