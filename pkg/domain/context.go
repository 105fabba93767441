package domain

// Namespace names exposed to expressions. These five keys are the entire
// surface an expression can see; nothing else is bound into the sandbox.
const (
	NamespaceWidgets = "widgets"
	NamespaceActions = "actions"
	NamespacePage    = "page"
	NamespaceUtils   = "utils"
	NamespaceStore   = "store"
)

// EvalContext is the mutable snapshot of named namespaces that expressions
// read from. The host owns it and replaces namespaces wholesale; the engine
// and executor hold a read-shared reference.
type EvalContext struct {
	// Widgets maps widget identifier to its current state bag.
	Widgets map[string]any

	// Actions maps action identifier to the last known result/metadata.
	Actions map[string]any

	// Page holds page-level metadata (name, route, ...).
	Page map[string]any

	// Utils is the closed, host-defined set of pure helper functions.
	// It is the only namespace exposing callables.
	Utils map[string]any

	// Store is free-form global application state.
	Store map[string]any
}

// NewEvalContext creates a context with all namespaces initialized empty.
func NewEvalContext() *EvalContext {
	return &EvalContext{
		Widgets: make(map[string]any),
		Actions: make(map[string]any),
		Page:    make(map[string]any),
		Utils:   make(map[string]any),
		Store:   make(map[string]any),
	}
}

// Env flattens the context into the five-key environment map handed to the
// evaluator. The maps themselves are shared, not copied.
func (c *EvalContext) Env() map[string]any {
	return map[string]any{
		NamespaceWidgets: c.Widgets,
		NamespaceActions: c.Actions,
		NamespacePage:    c.Page,
		NamespaceUtils:   c.Utils,
		NamespaceStore:   c.Store,
	}
}

// ContextPatch is a partial context update. A nil namespace is left
// untouched; a non-nil one replaces the current namespace wholesale.
type ContextPatch struct {
	Widgets map[string]any
	Actions map[string]any
	Page    map[string]any
	Store   map[string]any
}

// Apply merges the patch into the context. Utils is deliberately absent from
// ContextPatch: the helper set is fixed at construction time.
func (c *EvalContext) Apply(p ContextPatch) {
	if p.Widgets != nil {
		c.Widgets = p.Widgets
	}
	if p.Actions != nil {
		c.Actions = p.Actions
	}
	if p.Page != nil {
		c.Page = p.Page
	}
	if p.Store != nil {
		c.Store = p.Store
	}
}
