// Package player registers the asciinema player runtime with a site build.
//
// Once per build the Registrar adds the player script and stylesheet as vendor
// assets, renders the two partials page layouts use to include them, and sets
// the build-wide provider flag. Every write goes through the catalog's
// existence checks, so repeated calls within one build change nothing.
//
// User files win by default: a vendor path already occupied by a file this
// package did not register is left alone (logged at Info) unless overwrite is
// enabled, in which case it is replaced with a warning. A user partial with
// the same name always wins, silently.
package player
