// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package driver defines the low-level graphics API that the frame graph
// core targets: command buffer recording, buffer/image creation and the
// pipeline-stage/access/layout vocabulary used to describe synchronization.
// Concrete backends (Vulkan, Metal, ...) register themselves from an init
// function by calling Register; none ship in this module, since the GPU
// context/device wrapper is an external collaborator the core only
// consumes through this interface.
package driver

import (
	"errors"
	"log"
	"sync"
)

// Driver is a loadable graphics backend. A host links the backend
// packages it cares about, picks one out of the registry by name, and
// feeds the GPU from Open into graph building.
type Driver interface {
	// Open initializes the backend and returns its GPU.
	// Once Open succeeds, further calls on the same receiver have no
	// effect and return the same GPU. Open and Close are not safe for
	// concurrent use.
	Open() (GPU, error)

	// Name identifies the backend in the registry. It must not cause
	// the backend to be opened.
	Name() string

	// Close deinitializes the backend. Closing a backend that is not
	// open has no effect.
	Close()
}

// ErrNoDevice is returned by Open when the backend found no suitable
// device.
var ErrNoDevice = errors.New("driver: no suitable device found")

// ErrNoDeviceMemory is returned by resource creation (GPU.NewBuffer,
// GPU.NewImage) when device memory could not be allocated. Graph
// compilation surfaces it as the cause of an allocation failure.
var ErrNoDeviceMemory = errors.New("driver: out of device memory")

// Register adds a backend to the registry under its own Name.
// Backend packages call it exactly once, from an init function.
// Registering a second backend with the same name replaces the first.
func Register(drv Driver) {
	regMu.Lock()
	defer regMu.Unlock()
	name := drv.Name()
	if _, ok := registry[name]; ok {
		log.Printf("driver: backend %q replaced", name)
	} else {
		regOrder = append(regOrder, name)
		log.Printf("driver: backend %q registered", name)
	}
	registry[name] = drv
}

// Lookup returns the registered backend named name.
func Lookup(name string) (Driver, bool) {
	regMu.Lock()
	defer regMu.Unlock()
	drv, ok := registry[name]
	return drv, ok
}

// Drivers returns the registered backends in registration order.
// Backends that do not register themselves on init are never returned.
func Drivers() []Driver {
	regMu.Lock()
	defer regMu.Unlock()
	drv := make([]Driver, len(regOrder))
	for i, name := range regOrder {
		drv[i] = registry[name]
	}
	return drv
}

var (
	regMu    sync.Mutex
	registry = make(map[string]Driver)
	regOrder []string
)
