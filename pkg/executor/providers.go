package executor

import (
	"sync"
)

// ProviderFactory constructs a native execution target from the plugin's
// configuration. The returned value must implement plugin.Provider or at
// least the loose Execute shape accepted by the native backend.
type ProviderFactory func(config map[string]any) (any, error)

type providerKey struct {
	module string
	typ    string
}

var (
	providerMu sync.RWMutex
	providers  = map[providerKey]ProviderFactory{}
)

// RegisterProvider records a native execution target under its module and
// type names, as referenced by a manifest's execution.native block. Typically
// called from an init function of the package implementing the provider.
func RegisterProvider(module, typ string, factory ProviderFactory) {
	providerMu.Lock()
	defer providerMu.Unlock()
	providers[providerKey{module, typ}] = factory
}

// Provider returns the factory registered for a module/type pair
func Provider(module, typ string) (ProviderFactory, bool) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	f, ok := providers[providerKey{module, typ}]
	return f, ok
}

// HasModule reports whether any provider is registered under the module name
func HasModule(module string) bool {
	providerMu.RLock()
	defer providerMu.RUnlock()
	for key := range providers {
		if key.module == module {
			return true
		}
	}
	return false
}

// UnregisterProvider removes a registration. Intended for tests.
func UnregisterProvider(module, typ string) {
	providerMu.Lock()
	defer providerMu.Unlock()
	delete(providers, providerKey{module, typ})
}
