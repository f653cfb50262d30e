package host

import (
	"sync"

	"github.com/justyntemme/vst3host/pkg/vst3"
)

// Application is the host context plugins receive in Initialize.
type Application struct {
	Name    string
	Vendor  string
	Version string
}

var _ vst3.IHostApplication = (*Application)(nil)

// GetName implements vst3.IHostApplication.
func (a *Application) GetName() string {
	return a.Name
}

// SharedApplication is a reference-counted Application shared by every
// loaded plugin. It is built on the first Acquire and dropped when the last
// reference is released.
type SharedApplication struct {
	mu      sync.Mutex
	refs    int
	app     *Application
	factory func() *Application
}

// NewSharedApplication creates a shared application built by factory. A nil
// factory builds an Application named "vst3host".
func NewSharedApplication(factory func() *Application) *SharedApplication {
	if factory == nil {
		factory = func() *Application {
			return &Application{Name: "vst3host", Vendor: "vst3host", Version: "1.0.0"}
		}
	}
	return &SharedApplication{factory: factory}
}

// Acquire returns the application, constructing it if needed, and takes a
// reference.
func (s *SharedApplication) Acquire() *Application {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.app == nil {
		s.app = s.factory()
		Logger().Debug("host application created")
	}
	s.refs++
	return s.app
}

// Release drops a reference. The application is torn down when the count
// reaches zero; extra releases are ignored.
func (s *SharedApplication) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs == 0 {
		return
	}
	s.refs--
	if s.refs == 0 {
		s.app = nil
		Logger().Debug("host application released")
	}
}

// Refs returns the number of live references.
func (s *SharedApplication) Refs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs
}

// Live reports whether the application currently exists.
func (s *SharedApplication) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.app != nil
}

var defaultApplication = NewSharedApplication(nil)

// DefaultApplication returns the process-wide shared application used when
// no WithApplication option is given.
func DefaultApplication() *SharedApplication {
	return defaultApplication
}
