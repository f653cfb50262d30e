package vst3

import (
	"fmt"
	"sync"
)

// PluginFactory enumerates and instantiates the classes of a module.
type PluginFactory interface {
	ClassInfos() []ClassInfo
	CreateComponent(cid TUID) (IComponent, error)
	CreateController(cid TUID) (IEditController, error)
}

// Module is an opened plugin module.
type Module interface {
	Path() string
	Factory() PluginFactory
	Close() error
}

// ModuleLoader opens plugin modules of one kind.
type ModuleLoader interface {
	CanOpen(path string) bool
	Open(path string) (Module, error)
}

var (
	loadersMu sync.RWMutex
	loaders   []ModuleLoader
)

// RegisterLoader adds a loader consulted by OpenModule. Later registrations
// take precedence.
func RegisterLoader(l ModuleLoader) {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	loaders = append([]ModuleLoader{l}, loaders...)
}

// OpenModule opens path with the first loader that accepts it.
func OpenModule(path string) (Module, error) {
	loadersMu.RLock()
	defer loadersMu.RUnlock()
	for _, l := range loaders {
		if l.CanOpen(path) {
			return l.Open(path)
		}
	}
	return nil, fmt.Errorf("no module loader for %q", path)
}

// FindClass returns the first class of the given category.
func FindClass(f PluginFactory, category string) (ClassInfo, bool) {
	for _, ci := range f.ClassInfos() {
		if ci.Category == category {
			return ci, true
		}
	}
	return ClassInfo{}, false
}
