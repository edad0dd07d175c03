package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/sketchplane/pkg/session"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's timeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned for an evaluation that finished after a
	// newer one had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult carries one evaluation's outcome back from its goroutine.
type evalResult struct {
	session *session.Session
	errors  []EvalError
	err     error
}

// begin starts a new generation and returns its number.
func (e *Engine) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

func (e *Engine) latest() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// await blocks until the evaluation of generation gen reports on ch or the
// timeout passes. A timed out goroutine keeps running; whatever it sends
// later lands in the buffered channel and is dropped.
func (e *Engine) await(ch <-chan evalResult, gen uint64) (*session.Session, []EvalError, error) {
	timer := time.NewTimer(e.opts.Timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if gen != e.latest() {
			return nil, nil, ErrSuperseded
		}
		return res.session, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.opts.Timeout)
	}
}
