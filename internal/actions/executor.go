// Package actions implements the action registry and executor: named, typed
// side-effecting operations resolved through the expression engine and
// normalized into a single result shape.
//
// The executor never lets a variant-level failure escape Run; every outcome
// becomes an ActionResult. Host side-effects go through the ports.Host
// capability interface, storage through ports.KVStore.
package actions

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/formworks/bindery/internal/expression"
	"github.com/formworks/bindery/internal/logging"
	"github.com/formworks/bindery/internal/observability"
	"github.com/formworks/bindery/pkg/domain"
	"github.com/formworks/bindery/pkg/ports"
)

// DefaultHTTPTimeout bounds http/graphql calls when the action config does
// not specify its own timeout.
const DefaultHTTPTimeout = 30 * time.Second

// Listener observes the final result of an action run.
type Listener func(result domain.ActionResult)

// ListenerHandle identifies a registered listener for removal.
type ListenerHandle struct {
	actionID string
	id       int
}

// Executor holds the action registry and runs actions against the
// evaluation context.
type Executor struct {
	engine  *expression.Engine
	host    ports.Host
	store   ports.KVStore
	client  *http.Client
	logger  *slog.Logger
	metrics *observability.Metrics
	timeout time.Duration

	mu         sync.RWMutex
	defs       map[string]domain.ActionDefinition
	results    map[string]domain.ActionResult
	listeners  map[string]map[int]Listener
	nextHandle int

	// running serializes concurrent Run calls on the same action id.
	runningMu sync.Mutex
	running   map[string]*sync.Mutex
}

// Option configures the Executor.
type Option func(*Executor)

// WithHost sets the host capability set. Defaults to ports.NopHost.
func WithHost(h ports.Host) Option {
	return func(e *Executor) {
		e.host = h
	}
}

// WithStore sets the KVStore backing the localStorage variant.
func WithStore(s ports.KVStore) Option {
	return func(e *Executor) {
		e.store = s
	}
}

// WithHTTPClient overrides the client used by http/graphql variants.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) {
		e.client = c
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

// WithTimeout overrides the default http/graphql timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// NewExecutor creates an executor bound to the given expression engine.
func NewExecutor(engine *expression.Engine, opts ...Option) *Executor {
	e := &Executor{
		engine:    engine,
		host:      ports.NopHost{},
		client:    http.DefaultClient,
		logger:    logging.NewNop(),
		timeout:   DefaultHTTPTimeout,
		defs:      make(map[string]domain.ActionDefinition),
		results:   make(map[string]domain.ActionResult),
		listeners: make(map[string]map[int]Listener),
		running:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds or replaces an action definition.
func (e *Executor) Register(def domain.ActionDefinition) error {
	if def.ID == "" {
		return domain.ErrEmptyActionID
	}
	if !def.Type.Valid() {
		return &domain.UnknownActionTypeError{ID: def.ID, Type: def.Type}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.defs[def.ID] = def
	return nil
}

// Unregister removes an action along with its listeners and last result.
func (e *Executor) Unregister(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.defs, id)
	delete(e.results, id)
	delete(e.listeners, id)
}

// Definition returns the registered definition for id.
func (e *Executor) Definition(id string) (domain.ActionDefinition, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	def, ok := e.defs[id]
	return def, ok
}

// Result returns the last stored result for id, if the action ever ran.
func (e *Executor) Result(id string) (domain.ActionResult, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	res, ok := e.results[id]
	return res, ok
}

// AddListener subscribes fn to an action's results. The returned handle is
// the only way to remove the subscription.
func (e *Executor) AddListener(id string, fn Listener) ListenerHandle {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listeners[id] == nil {
		e.listeners[id] = make(map[int]Listener)
	}
	e.nextHandle++
	e.listeners[id][e.nextHandle] = fn
	return ListenerHandle{actionID: id, id: e.nextHandle}
}

// RemoveListener drops the subscription identified by handle.
func (e *Executor) RemoveListener(handle ListenerHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if subs, ok := e.listeners[handle.actionID]; ok {
		delete(subs, handle.id)
	}
}

// lockAction returns the per-id mutex, creating it on first use. Runs on the
// same action id are serialized; different ids stay independent.
func (e *Executor) lockAction(id string) *sync.Mutex {
	e.runningMu.Lock()
	defer e.runningMu.Unlock()

	mu, ok := e.running[id]
	if !ok {
		mu = &sync.Mutex{}
		e.running[id] = mu
	}
	return mu
}

// Run executes the action and returns its normalized result. It never
// returns a raw variant error: failures, including an unknown id, become
// ActionResult values that are stored and fanned out to listeners.
func (e *Executor) Run(ctx context.Context, id string, params map[string]any) domain.ActionResult {
	mu := e.lockAction(id)
	mu.Lock()
	defer mu.Unlock()

	def, ok := e.Definition(id)
	if !ok {
		result := domain.Failf("Action not found: %s", id)
		e.finish(id, "", result, 0)
		return result
	}

	start := time.Now()
	result := e.dispatch(ctx, def, params)
	e.finish(id, string(def.Type), result, time.Since(start))
	return result
}

// RunChain executes ids strictly sequentially, stopping at the first failed
// result. It returns the results produced up to and including the failure.
func (e *Executor) RunChain(ctx context.Context, ids []string, params map[string]any) []domain.ActionResult {
	results := make([]domain.ActionResult, 0, len(ids))
	for _, id := range ids {
		result := e.Run(ctx, id, params)
		results = append(results, result)
		if !result.Success {
			break
		}
	}
	return results
}

// finish stores the result, feeds it back into the evaluation context's
// actions namespace, records metrics and notifies listeners.
func (e *Executor) finish(id, actionType string, result domain.ActionResult, elapsed time.Duration) {
	e.mu.Lock()
	e.results[id] = result

	actionsState := make(map[string]any, len(e.results))
	for resID, res := range e.results {
		actionsState[resID] = map[string]any{
			"success": res.Success,
			"data":    res.Data,
			"error":   res.Error,
		}
	}

	subs := make([]Listener, 0, len(e.listeners[id]))
	for _, fn := range e.listeners[id] {
		subs = append(subs, fn)
	}
	e.mu.Unlock()

	// Context update also invalidates the expression value cache, so the
	// next render sees the fresh result.
	e.engine.UpdateContext(domain.ContextPatch{Actions: actionsState})

	if actionType != "" {
		e.metrics.ObserveActionRun(actionType, result.Success, elapsed)
	}
	if !result.Success {
		e.logger.Warn("Action failed", "action_id", id, "type", actionType, "error", result.Error)
	}

	for _, fn := range subs {
		fn(result)
	}
}

// dispatch routes to the variant executor and normalizes its outcome.
func (e *Executor) dispatch(ctx context.Context, def domain.ActionDefinition, params map[string]any) domain.ActionResult {
	switch def.Type {
	case domain.ActionHTTP:
		return e.runHTTP(ctx, def, params)
	case domain.ActionGraphQL:
		return e.runGraphQL(ctx, def, params)
	case domain.ActionUpdateWidget:
		return e.runUpdateWidget(ctx, def, params)
	case domain.ActionNavigate:
		return e.runNavigate(ctx, def, params)
	case domain.ActionOpenModal:
		return e.runModal(ctx, def, true)
	case domain.ActionCloseModal:
		return e.runModal(ctx, def, false)
	case domain.ActionShowAlert:
		return e.runAlert(ctx, def, params)
	case domain.ActionShowToast:
		return e.runToast(ctx, def, params)
	case domain.ActionLocalStorage:
		return e.runStorage(ctx, def, params)
	case domain.ActionCopyToClipboard:
		return e.runClipboard(ctx, def, params)
	case domain.ActionDownloadFile:
		return e.runDownload(ctx, def, params)
	case domain.ActionRunJS:
		return e.runJS(def, params)
	}
	return domain.Failf("unknown action type: %s", def.Type)
}

// decodeConfig maps the raw config into a typed variant config.
func decodeConfig(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// scope wraps run params for the expression engine's extra scope.
func scope(params map[string]any) map[string]any {
	if params == nil {
		params = map[string]any{}
	}
	return map[string]any{"params": params}
}
