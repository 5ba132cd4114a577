// Package interp implements the 010-dialect template evaluator: it walks a
// parsed template AST and, in lockstep, evaluates template semantics,
// consumes bytes from an input stream via typed field constructors, and
// assembles a typed DOM tree (spec.md §1-§4).
package interp

import (
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxRecursionDepth bounds user function call nesting so a runaway
// recursive template function fails fast instead of exhausting the Go
// stack.
const DefaultMaxRecursionDepth = 1000

// options stores interpreter configuration, assembled from Options plus
// defaults applied in New.
type options struct {
	Output            io.Writer
	Logger            *zap.SugaredLogger
	MaxRecursionDepth int
}

// Options configures a new Interpreter. Zero value is valid; every field
// defaults as documented.
type Options struct {
	// Output receives bytes written by native functions such as Printf.
	// Defaults to os.Stdout.
	Output io.Writer

	// Logger receives debug-level diagnostics of interpreter steps
	// (declarations and function calls). Defaults to a no-op
	// logger so callers never pay for logging they didn't ask for.
	Logger *zap.SugaredLogger

	// MaxRecursionDepth bounds nested user function calls. Defaults to
	// DefaultMaxRecursionDepth when zero.
	MaxRecursionDepth int
}

// Interpreter holds the resources shared across a single Eval call: its
// output sink, logger, recursion guard, and a process-unique identity used
// to correlate log lines across concurrent interpreters (spec.md §5:
// Interpreter instances do not share mutable state, so multiple
// Interpreters may run concurrently provided each owns its own stream).
type Interpreter struct {
	id     uuid.UUID
	opts   options
	logger *zap.SugaredLogger
	depth  int
}

// New returns a ready-to-use Interpreter. Each Interpreter is independent:
// construct one per concurrent Eval call.
func New(o Options) *Interpreter {
	resolved := options{
		Output:            o.Output,
		Logger:            o.Logger,
		MaxRecursionDepth: o.MaxRecursionDepth,
	}
	if resolved.Output == nil {
		resolved.Output = os.Stdout
	}
	if resolved.Logger == nil {
		resolved.Logger = zap.NewNop().Sugar()
	}
	if resolved.MaxRecursionDepth == 0 {
		resolved.MaxRecursionDepth = DefaultMaxRecursionDepth
	}

	id := uuid.New()
	return &Interpreter{
		id:     id,
		opts:   resolved,
		logger: resolved.Logger.With("interpreter", id.String()),
	}
}

// ID returns the interpreter's correlation identifier, primarily useful
// for matching log lines across concurrently running interpreters.
func (it *Interpreter) ID() uuid.UUID {
	return it.id
}
