// Package main provides the trestle CLI: an interactive editor for
// delimited tabular data with per-column validation and undo history.
package main

func main() {
	Execute()
}
