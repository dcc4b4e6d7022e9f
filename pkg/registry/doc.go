// Package registry provides a generic, type-safe, name-keyed registry.
// It backs the callback registry and the pipeline stage factories and
// supports registration from init() functions.
package registry
