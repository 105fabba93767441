package expression

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// markerPattern matches one {{ expr }} occurrence, non-greedy: the first
// closing braces terminate the marker. Nested braces inside an expression
// are not supported.
var markerPattern = regexp.MustCompile(`(?s)\{\{(.*?)\}\}`)

// depPattern matches literal widgets.<id>, actions.<id> and page.<id>
// references in expression source.
var depPattern = regexp.MustCompile(`\b(widgets|actions|page)\.([A-Za-z_$][A-Za-z0-9_$]*)`)

// HasExpression reports whether text contains at least one well-formed
// {{ }} marker.
func HasExpression(text string) bool {
	return markerPattern.MatchString(text)
}

// ExtractExpressions returns the raw expression sources found in text, in
// left-to-right order, duplicates preserved.
func ExtractExpressions(text string) []string {
	matches := markerPattern.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// Dependencies extracts every widgets/actions/page reference appearing
// literally in src: deduplicated, order of first occurrence.
//
// This is a conservative, purely syntactic approximation. References
// introduced through indirection (computed member access, values built at
// runtime) are invisible to it.
func Dependencies(src string) []string {
	matches := depPattern.FindAllStringSubmatch(src, -1)
	if matches == nil {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		dep := m[1] + "." + m[2]
		if seen[dep] {
			continue
		}
		seen[dep] = true
		out = append(out, dep)
	}
	return out
}

// stringify renders an evaluation result for template substitution.
// Empty results render as "", composites as JSON, everything else via fmt.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
	}
	return fmt.Sprintf("%v", v)
}

// RenderTemplateStrict substitutes every {{ }} marker in tpl, aborting on
// the first failing sub-expression. A template with no markers is returned
// unchanged.
func (e *Engine) RenderTemplateStrict(tpl string) (string, error) {
	if !HasExpression(tpl) {
		return tpl, nil
	}

	var firstErr error
	out := markerPattern.ReplaceAllStringFunc(tpl, func(marker string) string {
		if firstErr != nil {
			return ""
		}
		src := strings.TrimSpace(marker[2 : len(marker)-2])
		val, err := e.EvaluateStrict(src)
		if err != nil {
			firstErr = err
			return ""
		}
		return stringify(val)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// RenderTemplate substitutes every {{ }} marker in tpl. A failing
// sub-expression renders as "" without aborting the others.
func (e *Engine) RenderTemplate(tpl string) string {
	if !HasExpression(tpl) {
		return tpl
	}
	return markerPattern.ReplaceAllStringFunc(tpl, func(marker string) string {
		src := strings.TrimSpace(marker[2 : len(marker)-2])
		return stringify(e.Evaluate(src))
	})
}

// RenderTemplateWith is RenderTemplateStrict with extra scope entries
// layered on top of the namespaces (see EvaluateWith).
func (e *Engine) RenderTemplateWith(tpl string, extra map[string]any) (string, error) {
	if !HasExpression(tpl) {
		return tpl, nil
	}

	var firstErr error
	out := markerPattern.ReplaceAllStringFunc(tpl, func(marker string) string {
		if firstErr != nil {
			return ""
		}
		src := strings.TrimSpace(marker[2 : len(marker)-2])
		val, err := e.EvaluateWith(src, extra)
		if err != nil {
			firstErr = err
			return ""
		}
		return stringify(val)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
