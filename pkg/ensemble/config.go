package ensemble

import (
	toml "github.com/pelletier/go-toml/v2"
)

// DecodeConfig decodes a plugin's raw configuration slice into a typed
// struct using TOML field tags. Use it from an Initialize hook:
//
//	var cfg watcherConfig
//	if err := ensemble.DecodeConfig(pctx, &cfg); err != nil {
//	    return err
//	}
//
// The raw slice round-trips through TOML, so the same tags work whether the
// configuration came from a file or was supplied via WithPluginConfig.
func DecodeConfig[T any](pctx *Context, out *T) error {
	raw, err := toml.Marshal(pctx.Config())
	if err != nil {
		return err
	}
	return toml.Unmarshal(raw, out)
}
