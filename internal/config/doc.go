// Package config validates extension options and loads site configuration.
//
// Extension options arrive as a plain mapping at setup time. Unrecognized keys
// are fatal and reported all at once; recognized keys are checked against an
// embedded CUE schema before being decoded into ir.EmbedOptions.
package config
