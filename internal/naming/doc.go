// Package naming provides clip-stem parsing, duplicate index detection and
// the names of the scratch artifacts a run creates next to its inputs and
// output: partial files, lock files and the per-run workspace.
package naming
