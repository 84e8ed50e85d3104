// Package config holds process-wide tunables for the semantic core.
// Following the teacher's own approach (plain package-level vars rather
// than a config file format — the core has no CLI to read one from), it
// is the one place allowed to carry global mutable state.
package config

// Version identifies the semantic core release. No package in this
// module reads it.
var Version = "0.1.0"

// IsTestMode is kept for parity with the teacher's config surface; no
// package in this module reads it, so String() output is the same
// whether it is set or not.
var IsTestMode = false

// IsLSPMode would normalize presentation for an editor integration; kept
// for parity with the teacher's config surface even though this module
// ships no editor integration of its own (that, like the parser, is a
// collaborator outside this repository).
var IsLSPMode = false

// StrictMode mirrors the source-level `directive "strict_types"`. No
// package in this module reads it: compat.Compatible takes strictness as
// an explicit argument, and the checker neither consults nor changes
// this var.
var StrictMode = false

// RationalDenominatorCap bounds the denominator produced when converting
// a float constant to a rational via continued-fraction approximation
// (spec.md §4.7). Chosen generously: large enough that common decimal
// literals convert exactly, small enough to keep diagnostics readable.
const RationalDenominatorCap = 1_000_000_000

// CoreWorkspaceName is the workspace every other workspace implicitly
// imports (spec.md §3, "Workspace").
const CoreWorkspaceName = "core"

// MaxSimilarSuggestions bounds the "did you mean" list on name-resolution
// errors (spec.md §4.2, §7).
const MaxSimilarSuggestions = 3

// MaxSimilarEditDistance bounds how different a candidate name may be
// from the unresolved identifier to still be suggested (spec.md §4.2).
const MaxSimilarEditDistance = 2
