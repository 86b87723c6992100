package cache

import "github.com/google/wire"

// ProviderSet is the Wire provider set for cache.
var ProviderSet = wire.NewSet(
	ProvideCache,
)

// ProvideCache constructs the default Ristretto-backed Cache, bound to
// the Cache interface so callers never depend on the concrete type.
func ProvideCache() (Cache, error) {
	c, err := NewRistrettoCache()
	if err != nil {
		return nil, err
	}
	return c, nil
}
