package config

import "github.com/google/wire"

// ProviderSet is the Wire provider set for config.
var ProviderSet = wire.NewSet(
	Load,
)
