package session

import "github.com/google/wire"

// ProviderSet is the Wire provider set for the session store. The default
// binding is the in-memory Store (§6: "a default in-memory implementation
// is provided for tests"); a process wanting durable sessions supplies its
// own Store and skips this set.
var ProviderSet = wire.NewSet(
	ProvideMemoryStore,
	wire.Bind(new(Store), new(*MemoryStore)),
)

// ProvideMemoryStore constructs the default in-memory Store.
func ProvideMemoryStore() *MemoryStore {
	return NewMemoryStore()
}
