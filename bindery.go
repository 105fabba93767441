package bindery

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/formworks/bindery/internal/actions"
	"github.com/formworks/bindery/internal/expression"
	"github.com/formworks/bindery/internal/logging"
	"github.com/formworks/bindery/internal/observability"
	"github.com/formworks/bindery/pkg/domain"
	"github.com/formworks/bindery/pkg/ports"
)

// Version is the library version reported by the CLI and adapters.
var Version = "0.1.0"

// Runtime is the high-level entry point of the binding runtime: one
// expression engine and one action executor sharing an evaluation context.
//
// Runtimes are plain constructible objects; an application can own several
// independent ones (one per preview tab, per live page) in the same process.
type Runtime struct {
	engine   *expression.Engine
	executor *actions.Executor
	logger   *slog.Logger
}

type config struct {
	logger   *slog.Logger
	host     ports.Host
	store    ports.KVStore
	client   *http.Client
	utils    map[string]any
	registry prometheus.Registerer
	timeout  time.Duration
}

// Option defines a functional option for configuring the Runtime.
type Option func(*config)

// WithLogger sets a structured logger for engine and executor diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithHost wires the host capability set (widget updates, navigation,
// modals, notifications, clipboard, downloads). Defaults to no-ops.
func WithHost(h ports.Host) Option {
	return func(c *config) {
		c.host = h
	}
}

// WithStore wires the key-value store backing the localStorage action.
func WithStore(s ports.KVStore) Option {
	return func(c *config) {
		c.store = s
	}
}

// WithHTTPClient overrides the client used by http/graphql actions.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.client = client
	}
}

// WithUtils extends the expression utils namespace with host-defined pure
// helpers. This is the only extension point of the callable surface.
func WithUtils(extra map[string]any) Option {
	return func(c *config) {
		c.utils = extra
	}
}

// WithMetrics registers prometheus collectors on the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// WithHTTPTimeout sets the default timeout for http/graphql actions.
// Individual actions may still override it in their config.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New creates a Runtime with an empty evaluation context.
func New(opts ...Option) *Runtime {
	cfg := &config{
		logger:  logging.NewNop(),
		host:    ports.NopHost{},
		client:  http.DefaultClient,
		timeout: actions.DefaultHTTPTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var metrics *observability.Metrics
	if cfg.registry != nil {
		metrics = observability.New(cfg.registry)
	}

	engineOpts := []expression.Option{
		expression.WithLogger(cfg.logger),
		expression.WithMetrics(metrics),
	}
	if cfg.utils != nil {
		engineOpts = append(engineOpts, expression.WithUtils(cfg.utils))
	}
	engine := expression.New(engineOpts...)

	execOpts := []actions.Option{
		actions.WithHost(cfg.host),
		actions.WithHTTPClient(cfg.client),
		actions.WithLogger(cfg.logger),
		actions.WithMetrics(metrics),
		actions.WithTimeout(cfg.timeout),
	}
	if cfg.store != nil {
		execOpts = append(execOpts, actions.WithStore(cfg.store))
	}

	return &Runtime{
		engine:   engine,
		executor: actions.NewExecutor(engine, execOpts...),
		logger:   cfg.logger,
	}
}

// Evaluate evaluates a single expression against the current context.
// Failures collapse to nil and are logged; use EvaluateStrict to observe
// them.
func (r *Runtime) Evaluate(src string) any {
	return r.engine.Evaluate(src)
}

// EvaluateStrict evaluates a single expression, returning sandbox or
// runtime failures as typed errors.
func (r *Runtime) EvaluateStrict(src string) (any, error) {
	return r.engine.EvaluateStrict(src)
}

// EvaluateTemplate substitutes every {{ }} marker in the template. Failing
// sub-expressions render as empty strings.
func (r *Runtime) EvaluateTemplate(tpl string) string {
	return r.engine.RenderTemplate(tpl)
}

// EvaluateTemplateStrict substitutes every {{ }} marker, aborting on the
// first failing sub-expression.
func (r *Runtime) EvaluateTemplateStrict(tpl string) (string, error) {
	return r.engine.RenderTemplateStrict(tpl)
}

// HasExpression reports whether text contains a well-formed {{ }} marker.
func HasExpression(text string) bool {
	return expression.HasExpression(text)
}

// ExtractExpressions returns the raw expression sources in text, in order,
// duplicates preserved.
func ExtractExpressions(text string) []string {
	return expression.ExtractExpressions(text)
}

// GetDependencies extracts the widgets/actions/page references appearing
// literally in the expression source. Purely syntactic: indirect references
// are invisible to it.
func GetDependencies(src string) []string {
	return expression.Dependencies(src)
}

// ValidateExpression runs the sandbox check and a strict evaluation.
func (r *Runtime) ValidateExpression(src string) error {
	return r.engine.Validate(src)
}

// UpdateContext shallow-merges the patch into the evaluation context and
// clears the expression value cache.
func (r *Runtime) UpdateContext(patch domain.ContextPatch) {
	r.engine.UpdateContext(patch)
}

// Context returns the current evaluation context (read-only).
func (r *Runtime) Context() *domain.EvalContext {
	return r.engine.Context()
}

// RegisterAction adds or replaces an action definition.
func (r *Runtime) RegisterAction(def domain.ActionDefinition) error {
	return r.executor.Register(def)
}

// UnregisterAction removes an action with its listeners and last result.
func (r *Runtime) UnregisterAction(id string) {
	r.executor.Unregister(id)
}

// RunAction executes an action and returns its normalized result. Failures
// never surface as errors; they are encoded in the result.
func (r *Runtime) RunAction(ctx context.Context, id string, params map[string]any) domain.ActionResult {
	return r.executor.Run(ctx, id, params)
}

// RunActionChain executes ids strictly sequentially, stopping at the first
// failure, and returns the results produced up to and including it.
func (r *Runtime) RunActionChain(ctx context.Context, ids []string, params map[string]any) []domain.ActionResult {
	return r.executor.RunChain(ctx, ids, params)
}

// ActionResult returns the last stored result for id.
func (r *Runtime) ActionResult(id string) (domain.ActionResult, bool) {
	return r.executor.Result(id)
}

// ActionDefinition returns the registered definition for id.
func (r *Runtime) ActionDefinition(id string) (domain.ActionDefinition, bool) {
	return r.executor.Definition(id)
}

// AddActionListener subscribes fn to an action's results.
func (r *Runtime) AddActionListener(id string, fn actions.Listener) actions.ListenerHandle {
	return r.executor.AddListener(id, fn)
}

// RemoveActionListener drops a subscription.
func (r *Runtime) RemoveActionListener(handle actions.ListenerHandle) {
	r.executor.RemoveListener(handle)
}
