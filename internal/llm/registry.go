package llm

import (
	"fmt"
	"sort"
	"strings"
)

// ProviderFactory builds a provider from its own environment settings.
type ProviderFactory func() (Provider, error)

// factories are registered from init functions, before main runs
var factories = map[string]ProviderFactory{}

func RegisterProvider(name string, factory ProviderFactory) {
	factories[name] = factory
}

// Providers lists the registered provider names in sorted order.
func Providers() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProvider builds the named provider. The error for an unknown name lists
// what was registered.
func NewProvider(name string) (Provider, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unsupported provider %q (registered: %s)", name, strings.Join(Providers(), ", "))
	}
	return factory()
}
