package processor

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryLock      sync.Mutex
	registeredPlugins = map[string]Processor{}
)

// RegisterProcessor registers the given annotation processor under the given
// name. It panics if a processor is already registered with that name.
func RegisterProcessor(name string, p Processor) {
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, ok := registeredPlugins[name]; ok {
		panic(fmt.Sprintf("processor %q is already registered", name))
	}
	registeredPlugins[name] = p
}

// AllRegisteredProcessors returns the list of all registered processors,
// ordered by name.
func AllRegisteredProcessors() []Processor {
	registryLock.Lock()
	defer registryLock.Unlock()
	names := make([]string, 0, len(registeredPlugins))
	for name := range registeredPlugins {
		names = append(names, name)
	}
	sort.Strings(names)
	procs := make([]Processor, len(names))
	for i, name := range names {
		procs[i] = registeredPlugins[name]
	}
	return procs
}
