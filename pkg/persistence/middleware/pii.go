package middleware

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/formworks/bindery/pkg/ports"
)

const maskedValue = "***MASKED***"

type piiMiddleware struct {
	next     ports.KVStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks JSON object fields whose
// names match the patterns before they reach the underlying store. Values
// that are not JSON objects pass through untouched.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.KVStore) ports.KVStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Set(ctx context.Context, key string, value []byte) error {
	var decoded map[string]any
	if err := json.Unmarshal(value, &decoded); err != nil {
		// Not an object, nothing to mask.
		return m.next.Set(ctx, key, value)
	}

	maskMap(decoded, m.patterns)

	masked, err := json.Marshal(decoded)
	if err != nil {
		return err
	}
	return m.next.Set(ctx, key, masked)
}

func (m *piiMiddleware) Get(ctx context.Context, key string) ([]byte, error) {
	return m.next.Get(ctx, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) Clear(ctx context.Context) error {
	return m.next.Clear(ctx)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchesAny(k, patterns) {
			m[k] = maskedValue
			continue
		}
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
