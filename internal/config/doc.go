// Package config holds the runtime configuration for linkprune.
//
// Configuration comes from three layers, later layers winning: built-in
// defaults, an optional .linkprune YAML policy file (searched in the
// working directory, the home directory, then the XDG config
// directory), and CLI flags. The resulting Config is passed through the
// application explicitly; there is no global configuration state.
package config
