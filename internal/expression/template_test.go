package expression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formworks/bindery/internal/expression"
	"github.com/formworks/bindery/pkg/domain"
)

func TestHasExpression(t *testing.T) {
	assert.True(t, expression.HasExpression("Hello {{ page.name }}"))
	assert.True(t, expression.HasExpression("{{a}}{{b}}"))
	assert.False(t, expression.HasExpression("no markers here"))
	assert.False(t, expression.HasExpression("unbalanced {{ marker"))
}

func TestExtractExpressions(t *testing.T) {
	got := expression.ExtractExpressions("{{ a }} then {{ b }} then {{ a }}")
	assert.Equal(t, []string{"a", "b", "a"}, got)

	assert.Nil(t, expression.ExtractExpressions("plain text"))
}

func TestDependencies(t *testing.T) {
	t.Run("DedupesFirstOccurrence", func(t *testing.T) {
		got := expression.Dependencies("widgets.a.value + widgets.b.value + widgets.a.label")
		assert.Equal(t, []string{"widgets.a", "widgets.b"}, got)
	})

	t.Run("AllNamespaces", func(t *testing.T) {
		got := expression.Dependencies("actions.save.data + page.route + widgets.w.value")
		assert.Equal(t, []string{"actions.save", "page.route", "widgets.w"}, got)
	})

	t.Run("IgnoresStoreAndUtils", func(t *testing.T) {
		assert.Nil(t, expression.Dependencies("store.theme + utils.upper('x')"))
	})
}

func TestRenderTemplate(t *testing.T) {
	e := expression.New()
	e.UpdateContext(domain.ContextPatch{
		Widgets: map[string]any{
			"input1": map[string]any{"value": "Hi"},
		},
		Page: map[string]any{"name": "Home"},
	})

	t.Run("NoMarkersUnchanged", func(t *testing.T) {
		assert.Equal(t, "plain text", e.RenderTemplate("plain text"))
	})

	t.Run("SubstitutesValues", func(t *testing.T) {
		out := e.RenderTemplate("{{ widgets.input1.value }} from {{ page.name }}")
		assert.Equal(t, "Hi from Home", out)
	})

	t.Run("NilRendersEmpty", func(t *testing.T) {
		out := e.RenderTemplate("value: [{{ widgets.ghost }}]")
		assert.Equal(t, "value: []", out)
	})

	t.Run("FailureDoesNotAbortOthers", func(t *testing.T) {
		out := e.RenderTemplate("{{ eval('x') }}-{{ page.name }}")
		assert.Equal(t, "-Home", out)
	})
}

func TestRenderTemplateStrict(t *testing.T) {
	e := expression.New()
	e.UpdateContext(domain.ContextPatch{
		Page: map[string]any{"name": "Home"},
	})

	t.Run("Succeeds", func(t *testing.T) {
		out, err := e.RenderTemplateStrict("Welcome to {{ page.name }}")
		require.NoError(t, err)
		assert.Equal(t, "Welcome to Home", out)
	})

	t.Run("FirstFailurePropagates", func(t *testing.T) {
		_, err := e.RenderTemplateStrict("{{ page.name }} {{ __proto__ }}")
		require.Error(t, err)
		var forbidden *domain.ForbiddenKeywordError
		assert.ErrorAs(t, err, &forbidden)
	})
}

func TestRenderTemplate_CompositeValuesAsJSON(t *testing.T) {
	e := expression.New()
	e.UpdateContext(domain.ContextPatch{
		Widgets: map[string]any{
			"list": map[string]any{"items": []any{1, 2}},
		},
	})

	out := e.RenderTemplate("{{ widgets.list.items }}")
	assert.Equal(t, "[1,2]", out)
}
