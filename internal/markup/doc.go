// Package markup turns asciinema embed blocks into player markup.
//
// The Builder publishes a block's text through the deduplicating publisher
// and composes the container, the content holder keyed by the recording
// token, the optional title, and the bootstrap call
//
//	AsciinemaPlayer.create(path, element, options)
//
// Extension plugs the Builder into goldmark: fenced code blocks whose info
// string starts with "asciinema" are replaced by embed nodes.
//
// Info string syntax:
//
//	```asciinema [target [format]] [#id] [.role] [key=value | key="value"]...
package markup
