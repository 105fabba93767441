package actions

import (
	"strings"

	"github.com/formworks/bindery/internal/expression"
)

// resolveString resolves a possibly-templated string. A string that is
// exactly one {{ }} marker evaluates as a full expression so the value keeps
// its type; anything else renders as a template string.
func (e *Executor) resolveString(s string, params map[string]any) (any, error) {
	if !expression.HasExpression(s) {
		return s, nil
	}
	if isSingleMarker(s) {
		exprs := expression.ExtractExpressions(s)
		return e.engine.EvaluateWith(exprs[0], scope(params))
	}
	return e.engine.RenderTemplateWith(s, scope(params))
}

// resolveTemplate always renders s as a template string.
func (e *Executor) resolveTemplate(s string, params map[string]any) (string, error) {
	return e.engine.RenderTemplateWith(s, scope(params))
}

// resolveValue walks maps, slices and strings, resolving every templated
// string leaf. Non-string leaves pass through untouched.
func (e *Executor) resolveValue(v any, params map[string]any) (any, error) {
	switch t := v.(type) {
	case string:
		return e.resolveString(t, params)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			resolved, err := e.resolveValue(item, params)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			resolved, err := e.resolveValue(item, params)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	}
	return v, nil
}

// isSingleMarker reports whether s is one {{ }} marker with nothing around
// it but whitespace.
func isSingleMarker(s string) bool {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "{{") || !strings.HasSuffix(t, "}}") {
		return false
	}
	inner := t[2 : len(t)-2]
	return !strings.Contains(inner, "}}") && !strings.Contains(inner, "{{")
}
