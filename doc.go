/*
Package bindery is the binding and action runtime of a visual application
builder: it evaluates user-authored {{ }} expressions against a live data
context under a security sandbox, and executes typed side-effecting actions
(HTTP calls, widget mutation, navigation, storage, clipboard, sandboxed
code) against that same context.

# Concept

A page built from widgets binds its properties with expressions like
"{{ widgets.input1.value }}". The runtime owns the evaluation context — five
namespaces (widgets, actions, page, utils, store) — and the host application
(editor or live page) replaces namespaces whenever widget state, action
results or page metadata change. Expressions can reach those five namespaces
and nothing else; utils is the only callable surface and is a closed,
host-defined set of pure helpers.

Actions are named, registered operations with templated configuration. The
executor resolves the templates through the expression engine, performs the
side effect through the host capability interface, and normalizes every
outcome into a single result shape that is stored, fanned out to listeners
and fed back into the context.

# Usage

	rt := bindery.New(
		bindery.WithHost(myHost),
		bindery.WithStore(memory.NewStore()),
	)

	rt.UpdateContext(domain.ContextPatch{
		Widgets: map[string]any{
			"input1": map[string]any{"value": "Hi"},
		},
	})

	label := rt.EvaluateTemplate("Hello {{ widgets.input1.value }}")

	rt.RegisterAction(domain.ActionDefinition{
		ID:   "save",
		Type: domain.ActionHTTP,
		Config: map[string]any{
			"url":    "https://api.example.com/save",
			"method": "POST",
			"body":   map[string]any{"value": "{{ widgets.input1.value }}"},
		},
	})
	result := rt.RunAction(ctx, "save", nil)

Runtimes are independent, constructible objects: an application can run one
per open preview tab without any shared global state.
*/
package bindery
