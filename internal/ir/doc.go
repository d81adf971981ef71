// Package ir provides the shared value types for castembed.
//
// This package contains type definitions and pure functions only. All other
// internal packages import ir; ir imports nothing internal. This keeps ir the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Content identity is a pure function of the exact recording bytes
//   - Embed options are optional fields; unset means "omit", never a sentinel
//   - Serialized options are canonical (sorted keys, no HTML escaping)
package ir
