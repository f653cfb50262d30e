package main

import (
	"sync"

	"github.com/justyntemme/vst3host/pkg/host"
)

// instance is a loaded plugin and the buffer headers reused across blocks.
type instance struct {
	plugin *host.Plugin

	// serializes Process and the channel views below
	mu      sync.Mutex
	inputs  [][][]float32
	outputs [][][]float32

	errMu   sync.Mutex
	lastErr string
}

var (
	instances   = make(map[uintptr]*instance)
	instancesMu sync.RWMutex
	nextHandle  uintptr = 1
)

// registerInstance stores inst and returns its handle
func registerInstance(inst *instance) uintptr {
	instancesMu.Lock()
	defer instancesMu.Unlock()
	h := nextHandle
	nextHandle++
	instances[h] = inst
	return h
}

// unregisterInstance removes and returns the instance for h
func unregisterInstance(h uintptr) *instance {
	instancesMu.Lock()
	defer instancesMu.Unlock()
	inst := instances[h]
	delete(instances, h)
	return inst
}

// getInstance retrieves an instance by handle
func getInstance(h uintptr) *instance {
	instancesMu.RLock()
	defer instancesMu.RUnlock()

	if h == 0 {
		return nil
	}
	return instances[h]
}

func (inst *instance) setLastError(msg string) {
	inst.errMu.Lock()
	inst.lastErr = msg
	inst.errMu.Unlock()
}

func (inst *instance) lastError() string {
	inst.errMu.Lock()
	defer inst.errMu.Unlock()
	return inst.lastErr
}
