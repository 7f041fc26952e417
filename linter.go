package twigcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yacobolo/twigcs/internal/checker"
	"github.com/yacobolo/twigcs/internal/lexer"
)

// Input is one template to lint together with the ruleset that applies to it
type Input struct {
	File    string   // Label used in violations and output
	Source  string   // Template text
	Ruleset *Ruleset // Resolved, immutable ruleset
}

// Options configures a lint run
type Options struct {
	Workers          int              // Parallel file passes (0 = GOMAXPROCS)
	Threshold        Severity         // Minimum severity that fails the run
	Display          DisplayMode      // Which violations reporters render
	ThrowSyntaxError bool             // Abort the run on the first syntax error
	Logger           *slog.Logger     // Optional, defaults to discarding
	Observer         func(FileResult) // Optional, called once per linted file from worker goroutines
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FileError attaches a template path to an error
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// LintSource lints a single template. For a template that fails to tokenize
// no rule is checked: the result carries the SyntaxError and no violations.
func LintSource(file, source string, rs *Ruleset) FileResult {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		var syntaxErr *lexer.SyntaxError
		if !errors.As(err, &syntaxErr) {
			syntaxErr = &lexer.SyntaxError{Line: 1, Column: 1, Message: err.Error()}
		}
		return FileResult{File: file, SyntaxError: syntaxErr}
	}

	errs := checker.Check(tokens, rs)
	return FileResult{File: file, Violations: NewViolations(file, source, errs, rs)}
}

// Run lints inputs on a bounded worker pool.
//
// Results keep the order of inputs regardless of completion order. Cancelling
// ctx stops dispatching new files and returns ctx.Err(). With
// ThrowSyntaxError set, dispatch stops at the first syntax error and Run
// returns the earliest one in input order as a *FileError.
func Run(ctx context.Context, inputs []Input, opts Options) (*LintResult, error) {
	logger := opts.logger()
	start := time.Now()

	results := make([]FileResult, len(inputs))
	done := make([]bool, len(inputs))
	var abort atomic.Bool

	var g errgroup.Group
	g.SetLimit(opts.workers())

	for i := range inputs {
		if ctx.Err() != nil || abort.Load() {
			break
		}
		in := inputs[i]
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res := LintSource(in.File, in.Source, in.Ruleset)
			results[i] = res
			done[i] = true

			if res.SyntaxError != nil {
				logger.Debug("syntax error", "file", in.File, "error", res.SyntaxError.Error())
				if opts.ThrowSyntaxError {
					abort.Store(true)
				}
			}
			if opts.Observer != nil {
				opts.Observer(res)
			}
			return nil
		})
	}
	// Workers never return errors
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.ThrowSyntaxError {
		for i, res := range results {
			if done[i] && res.SyntaxError != nil {
				return nil, &FileError{File: res.File, Err: res.SyntaxError}
			}
		}
	}

	result := Aggregate(results, opts.Threshold, opts.Display)
	logger.Debug("lint run complete",
		"files", len(inputs),
		"violations", result.Counts.Total(),
		"blocking", result.HasBlocking,
		"duration", time.Since(start))
	return result, nil
}

// LoadInputs reads each file and resolves its ruleset. Every ruleset is
// resolved before any template is checked, so a configuration problem
// aborts the run up front.
func LoadInputs(files []string, resolve func(file string) (*Ruleset, error)) ([]Input, error) {
	inputs := make([]Input, 0, len(files))
	for _, file := range files {
		rs, err := resolve(file)
		if err != nil {
			return nil, err
		}

		// #nosec G304 - paths come from discovery over user-supplied roots
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, &FileError{File: file, Err: fmt.Errorf("read template: %w", err)}
		}
		inputs = append(inputs, Input{File: file, Source: string(content), Ruleset: rs})
	}
	return inputs, nil
}
