// Package engine evaluates sketch construction scripts. It wraps zygomys in
// a sandboxed environment and replays the script's builtins into a fresh
// session.Session.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/google/uuid"

	"github.com/chazu/sketchplane/pkg/config"
	applog "github.com/chazu/sketchplane/pkg/log"
	"github.com/chazu/sketchplane/pkg/session"
	"github.com/chazu/sketchplane/pkg/workplane"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a validation finding on a workplane produced by a script.
// Edge is -1 when the finding is not about a single profile edge.
type EvalWarning struct {
	Workplane uuid.UUID
	Edge      int
	Severity  workplane.Severity
	Message   string
}

// EvalResult bundles the full output of an evaluation for use by UI bindings.
type EvalResult struct {
	Session  *session.Session
	Errors   []EvalError
	Warnings []EvalWarning
}

// Options configures an Engine.
type Options struct {
	// Workplane is applied to every workplane a script creates.
	Workplane workplane.Options
	// Units is the unit system scripts start in.
	Units string
	// Timeout bounds a single evaluation.
	Timeout time.Duration
}

// DefaultOptions returns millimetre units, default workplanes and a
// five second timeout.
func DefaultOptions() Options {
	return Options{
		Workplane: workplane.DefaultOptions(),
		Units:     "mm",
		Timeout:   EvalTimeout,
	}
}

// OptionsFromConfig derives engine options from the user configuration.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Workplane: cfg.WorkplaneOptions(),
		Units:     cfg.Workplane.Units,
		Timeout:   cfg.EvalTimeout(),
	}
}

// Engine wraps the zygomys interpreter for sketch evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment and session for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	opts       Options
}

// NewEngine creates an Engine with DefaultOptions.
func NewEngine() *Engine {
	return NewEngineWithOptions(DefaultOptions())
}

// NewEngineWithOptions creates an Engine. A zero Timeout falls back to
// EvalTimeout and empty Units to millimetres.
func NewEngineWithOptions(opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = EvalTimeout
	}
	if opts.Units == "" {
		opts.Units = "mm"
	}
	return &Engine{opts: opts}
}

// Evaluate runs a construction script and returns the session it built.
//
// Return semantics:
//   - On success: returns session + nil errors + nil error
//   - On parse/eval failure: returns nil session + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*session.Session, []EvalError, error) {
	gen := e.begin()
	log := applog.WithOperation(applog.WithComponent("engine"), "evaluate")
	start := time.Now()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		s, evalErrs, err := e.evaluate(source)
		ch <- evalResult{session: s, errors: evalErrs, err: err}
	}()

	s, evalErrs, err := e.await(ch, gen)
	switch {
	case err != nil:
		log.Warn("evaluation failed", "generation", gen, "err", err)
	case len(evalErrs) > 0:
		log.Debug("script error", "generation", gen, "err", evalErrs[0].Error())
	default:
		log.Debug("evaluated", "generation", gen,
			"workplanes", len(s.Workplanes()), "elapsed", time.Since(start))
	}
	return s, evalErrs, err
}

// Run evaluates source and bundles the session, errors and validation
// findings. A fatal failure is reported as a single EvalError.
func (e *Engine) Run(source string) EvalResult {
	s, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return EvalResult{Errors: []EvalError{{Message: err.Error()}}}
	}
	res := EvalResult{Session: s, Errors: evalErrs}
	if s != nil {
		res.Warnings = Findings(s)
	}
	return res
}

// Findings validates every workplane of s in creation order.
func Findings(s *session.Session) []EvalWarning {
	var out []EvalWarning
	for _, wp := range s.Workplanes() {
		for _, v := range wp.Validate() {
			out = append(out, EvalWarning{
				Workplane: wp.ID,
				Edge:      v.Edge,
				Severity:  v.Severity,
				Message:   v.Message,
			})
		}
	}
	return out
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*session.Session, []EvalError, error) {
	s := session.New(e.opts.Workplane)
	if err := s.SetUnits(e.opts.Units); err != nil {
		return nil, nil, fmt.Errorf("engine: %w", err)
	}

	// Empty source is a valid program that produces an empty session.
	if strings.TrimSpace(source) == "" {
		return s, nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, s)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return s, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
