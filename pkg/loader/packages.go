package loader

import (
	"sync"
)

// PackageIndex reports the installed version of a host package. The loader
// checks plugin dependency constraints against it.
type PackageIndex interface {
	// Version returns the installed version of a package, if present
	Version(name string) (string, bool)
}

// MapIndex is the trivial PackageIndex backed by a map
type MapIndex map[string]string

// Version implements PackageIndex
func (m MapIndex) Version(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

var (
	packageMu   sync.RWMutex
	packageDirs = map[string]string{}
)

// RegisterPackage records a plugin directory published by an installed host
// package. Registered directories are discovered after built-ins and before
// the user and project directories, so either of those can shadow them.
func RegisterPackage(name, dir string) {
	packageMu.Lock()
	defer packageMu.Unlock()
	packageDirs[name] = dir
}

// UnregisterPackage removes a package registration. Intended for tests.
func UnregisterPackage(name string) {
	packageMu.Lock()
	defer packageMu.Unlock()
	delete(packageDirs, name)
}

func packageEntries() map[string]string {
	packageMu.RLock()
	defer packageMu.RUnlock()
	out := make(map[string]string, len(packageDirs))
	for k, v := range packageDirs {
		out[k] = v
	}
	return out
}
