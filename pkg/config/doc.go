// Package config loads spanruler configuration with koanf.
//
// Layers, lowest priority first:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user config file: an explicit path, or
//     $XDG_CONFIG_HOME/spanruler/config.{toml,yaml,yml}
//  3. SPANRULER_ environment variables, with "__" separating sections:
//     SPANRULER_RULER__SPANS_KEY=dates sets ruler.spans_key
//  4. explicit overrides, usually command line flags
package config
