// Package config defines the resolved run configuration consumed by the
// retry engine.
//
// A [Config] is built once by the CLI layer, starting from [Default] or from
// a YAML defaults file read with [LoadFile], then overridden by explicit
// flags. It is treated as read-only once handed to the engine.
package config
