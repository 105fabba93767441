// Package expression implements the binding engine: it evaluates
// user-authored {{ }} expressions against the five-namespace evaluation
// context under a sandbox, caches results, and extracts static
// dependencies.
//
// Evaluation is delegated to expr-lang, a restricted expression language
// compiled against a closed environment. An expression can only ever see
// the five namespaces bound into that environment; there is no route from
// expression code to ambient process state. The historical identifier
// denylist is kept on top of that as defense in depth, and because callers
// rely on the ForbiddenKeywordError contract.
package expression

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/formworks/bindery/internal/logging"
	"github.com/formworks/bindery/internal/observability"
	"github.com/formworks/bindery/pkg/domain"
)

// forbidden is the identifier denylist. Matching is plain substring search
// over the source text; any hit fails the evaluation before any code runs.
var forbidden = []string{
	"eval",
	"Function",
	"constructor",
	"prototype",
	"__proto__",
	"window",
	"document",
	"global",
	"process",
	"require",
	"import",
	"fetch",
	"XMLHttpRequest",
}

// Engine evaluates expressions against a live evaluation context.
//
// Successful evaluations are cached by exact source text; the value cache is
// fully cleared on every context update. Compiled programs are cached
// separately and survive context updates, since compilation does not touch
// context data.
type Engine struct {
	mu       sync.RWMutex
	ctx      *domain.EvalContext
	values   map[string]any
	programs map[string]*vm.Program

	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the structured logger used for evaluation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithUtils extends the utils namespace with host-defined helpers. This is
// the only way to grow the callable surface; the namespace is immutable
// after construction.
func WithUtils(extra map[string]any) Option {
	return func(e *Engine) {
		for name, fn := range extra {
			e.ctx.Utils[name] = fn
		}
	}
}

// New creates an engine with an empty context and the builtin utils set.
func New(opts ...Option) *Engine {
	e := &Engine{
		ctx:      domain.NewEvalContext(),
		values:   make(map[string]any),
		programs: make(map[string]*vm.Program),
		logger:   logging.NewNop(),
	}
	e.ctx.Utils = Builtins()
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Context returns the current evaluation context. Callers must treat it as
// read-only; mutations go through UpdateContext.
func (e *Engine) Context() *domain.EvalContext {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ctx
}

// UpdateContext shallow-merges the patch into the context (each namespace
// present in the patch replaces the current one wholesale) and
// unconditionally clears the value cache.
func (e *Engine) UpdateContext(patch domain.ContextPatch) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctx.Apply(patch)
	e.values = make(map[string]any)
}

// checkSandbox scans the source for denylisted identifiers.
func checkSandbox(src string) error {
	for _, kw := range forbidden {
		if strings.Contains(src, kw) {
			return &domain.ForbiddenKeywordError{Keyword: kw, Source: src}
		}
	}
	return nil
}

// compile returns the cached program for src, compiling on first use.
func (e *Engine) compile(src string) (*vm.Program, error) {
	e.mu.RLock()
	program, ok := e.programs[src]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, &domain.EvaluationError{Source: src, Err: err}
	}

	e.mu.Lock()
	e.programs[src] = program
	e.mu.Unlock()
	return program, nil
}

// EvaluateStrict evaluates a single expression and returns any sandbox or
// runtime failure as a typed error (ForbiddenKeywordError or
// EvaluationError).
func (e *Engine) EvaluateStrict(src string) (any, error) {
	src = strings.TrimSpace(src)

	if err := checkSandbox(src); err != nil {
		e.metrics.ObserveEvaluation(false)
		return nil, err
	}

	e.mu.RLock()
	cached, hit := e.values[src]
	e.mu.RUnlock()
	if hit {
		e.metrics.ObserveCacheHit()
		return cached, nil
	}

	program, err := e.compile(src)
	if err != nil {
		e.metrics.ObserveEvaluation(false)
		return nil, err
	}

	e.mu.RLock()
	env := e.ctx.Env()
	e.mu.RUnlock()

	out, err := expr.Run(program, env)
	if err != nil {
		e.metrics.ObserveEvaluation(false)
		return nil, &domain.EvaluationError{Source: src, Err: err}
	}

	e.mu.Lock()
	e.values[src] = out
	e.mu.Unlock()
	e.metrics.ObserveEvaluation(true)
	return out, nil
}

// Evaluate evaluates a single expression. Failures are logged and collapse
// to nil so a broken binding renders as an empty value instead of breaking
// the page.
func (e *Engine) Evaluate(src string) any {
	out, err := e.EvaluateStrict(src)
	if err != nil {
		e.logger.Warn("Expression evaluation failed", "expression", src, "error", err)
		return nil
	}
	return out
}

// EvaluateWith evaluates src with extra scope entries layered on top of the
// five namespaces (e.g. run-time action params). Results are not value
// cached because the extra scope varies per call; the program cache is
// still used.
func (e *Engine) EvaluateWith(src string, extra map[string]any) (any, error) {
	src = strings.TrimSpace(src)

	if err := checkSandbox(src); err != nil {
		e.metrics.ObserveEvaluation(false)
		return nil, err
	}

	program, err := e.compile(src)
	if err != nil {
		e.metrics.ObserveEvaluation(false)
		return nil, err
	}

	e.mu.RLock()
	env := e.ctx.Env()
	e.mu.RUnlock()
	for k, v := range extra {
		env[k] = v
	}

	out, err := expr.Run(program, env)
	if err != nil {
		e.metrics.ObserveEvaluation(false)
		return nil, &domain.EvaluationError{Source: src, Err: err}
	}
	e.metrics.ObserveEvaluation(true)
	return out, nil
}

// Validate runs the sandbox check and a strict evaluation, reporting the
// first failure. A nil return means the expression is well-formed and
// evaluates cleanly against the current context.
func (e *Engine) Validate(src string) error {
	_, err := e.EvaluateStrict(src)
	return err
}
