// Package nsc is the small façade gluing the semantic core's pipeline
// together for embedders (spec.md §1, §6): a parser/lexer upstream of
// this module produces *ast.SourceUnit values, and a renderer downstream
// consumes the diagnostic stream this package returns. Nothing else in
// this repository should be imported directly by an embedder.
package nsc

import (
	"github.com/nemesis-lang/nsc/internal/ast"
	"github.com/nemesis-lang/nsc/internal/checker"
	"github.com/nemesis-lang/nsc/internal/diagnostics"
	"github.com/nemesis-lang/nsc/internal/obslog"
	"github.com/nemesis-lang/nsc/internal/symbols"
	"github.com/nemesis-lang/nsc/internal/typesystem"
	"github.com/nemesis-lang/nsc/internal/workspace"

	"github.com/pkg/errors"
)

// Options configures a Check run. A zero Options checks in isolation,
// building a fresh Registry/Universe and collecting diagnostics
// in-memory — the common case for a one-shot CLI invocation or a test.
type Options struct {
	// Registry and Universe let an embedder seed a prior Check's `core`
	// workspace output and reuse it across subsequent runs, rather than
	// re-checking `core` on every invocation.
	Registry *typesystem.Registry
	Universe *symbols.Universe

	// Sink receives diagnostics as they are produced. Nil defaults to an
	// in-memory diagnostics.Collector, whose contents are also returned
	// in Result.Diagnostics.
	Sink diagnostics.Sink

	// Logger receives structured progress logs for each pass. Nil
	// defaults to a no-op logger, matching obslog's embedder-friendly
	// default (spec.md §6: "a library embedder should never see
	// unsolicited stderr output").
	Logger *obslog.Logger
}

// Result is what Check produces: the entry point (if any), the resolved
// workspace dependency graph, and the full diagnostic stream.
type Result struct {
	EntryPoint  *symbols.Declaration
	Graph       *workspace.Graph
	Diagnostics []diagnostics.Diagnostic
	Registry    *typesystem.Registry
	Universe    *symbols.Universe
}

// Check runs the semantic core's five passes over units, returning every
// diagnostic produced alongside the entry point and workspace graph pass
// 4 and pass 0 resolve respectively (spec.md §4.5). Check never panics on
// malformed input — every failure mode the checker itself recognizes is
// reported as a diagnostic, not a Go error; the error return is reserved
// for a structural failure the checker cannot attribute to a span at all
// (e.g. a cyclic workspace `use` graph, spec.md §3).
func Check(units []*ast.SourceUnit, opts Options) (Result, error) {
	sink := opts.Sink
	var collector *diagnostics.Collector
	if sink == nil {
		collector = diagnostics.NewCollector()
		sink = collector
	}

	c := checker.New(checker.Config{
		Registry: opts.Registry,
		Universe: opts.Universe,
		Sink:     sink,
		Logger:   opts.Logger,
	})

	out, err := c.Run(units)
	if err != nil {
		return Result{}, errors.Wrap(err, "nsc: check failed")
	}

	result := Result{
		EntryPoint: out.EntryPoint,
		Graph:      out.Graph,
		Registry:   c.Registry(),
		Universe:   c.Universe(),
	}
	if collector != nil {
		result.Diagnostics = collector.Diagnostics
	}
	return result, nil
}
