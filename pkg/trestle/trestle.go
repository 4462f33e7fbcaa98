// Package trestle carries the module version shared by the CLI and the
// build tooling.
package trestle

// Version is the trestle release version.
const Version = "0.4.0"
