package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/formworks/bindery/pkg/domain"
)

type httpConfig struct {
	URL     string            `mapstructure:"url"`
	Method  string            `mapstructure:"method"`
	Headers map[string]string `mapstructure:"headers"`
	Body    any               `mapstructure:"body"`
	Timeout int               `mapstructure:"timeout"` // milliseconds
}

// runHTTP issues a network request with templated URL, headers and body.
// The configured timeout cancels the in-flight call. A non-2xx status maps
// to a failed result that still carries the parsed body as data.
func (e *Executor) runHTTP(ctx context.Context, def domain.ActionDefinition, params map[string]any) domain.ActionResult {
	var cfg httpConfig
	if err := decodeConfig(def.Config, &cfg); err != nil {
		return domain.Failf("invalid http config: %s", err)
	}

	url, err := e.resolveTemplate(cfg.URL, params)
	if err != nil {
		return domain.FailErr(err)
	}

	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}

	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		resolved, err := e.resolveTemplate(v, params)
		if err != nil {
			return domain.FailErr(err)
		}
		headers[k] = resolved
	}

	var payload []byte
	if cfg.Body != nil {
		body, err := e.resolveValue(cfg.Body, params)
		if err != nil {
			return domain.FailErr(err)
		}
		switch b := body.(type) {
		case string:
			payload = []byte(b)
		default:
			payload, err = json.Marshal(b)
			if err != nil {
				return domain.Failf("failed to encode request body: %s", err)
			}
			if _, ok := headers["Content-Type"]; !ok {
				headers["Content-Type"] = "application/json"
			}
		}
	}

	timeout := e.timeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Millisecond
	}

	return e.doWithRetry(ctx, def.Retry, func(ctx context.Context) (domain.ActionResult, bool) {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(reqCtx, method, url, reader)
		if err != nil {
			return domain.Failf("invalid request: %s", err), false
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			return domain.Failf("request aborted: %s", err), true
		}
		defer resp.Body.Close()

		data, err := parseBody(resp)
		if err != nil {
			return domain.Failf("failed to read response: %s", err), true
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			result := domain.ActionResult{
				Success: false,
				Data:    data,
				Error:   fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			}
			return result, resp.StatusCode >= 500
		}
		return domain.Succeed(data), false
	})
}

type graphqlConfig struct {
	URL       string            `mapstructure:"url"`
	Query     string            `mapstructure:"query"`
	Variables any               `mapstructure:"variables"`
	Headers   map[string]string `mapstructure:"headers"`
	Timeout   int               `mapstructure:"timeout"` // milliseconds
}

type graphqlResponse struct {
	Data   any `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// runGraphQL posts a templated query with JSON variables. An errors array in
// the response maps to a failed result with the messages concatenated.
func (e *Executor) runGraphQL(ctx context.Context, def domain.ActionDefinition, params map[string]any) domain.ActionResult {
	var cfg graphqlConfig
	if err := decodeConfig(def.Config, &cfg); err != nil {
		return domain.Failf("invalid graphql config: %s", err)
	}

	url, err := e.resolveTemplate(cfg.URL, params)
	if err != nil {
		return domain.FailErr(err)
	}
	query, err := e.resolveTemplate(cfg.Query, params)
	if err != nil {
		return domain.FailErr(err)
	}

	var variables any
	switch v := cfg.Variables.(type) {
	case nil:
	case string:
		rendered, err := e.resolveTemplate(v, params)
		if err != nil {
			return domain.FailErr(err)
		}
		if rendered != "" {
			if err := json.Unmarshal([]byte(rendered), &variables); err != nil {
				return domain.Failf("invalid graphql variables: %s", err)
			}
		}
	default:
		variables, err = e.resolveValue(v, params)
		if err != nil {
			return domain.FailErr(err)
		}
	}

	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return domain.Failf("failed to encode graphql request: %s", err)
	}

	timeout := e.timeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Millisecond
	}

	return e.doWithRetry(ctx, def.Retry, func(ctx context.Context) (domain.ActionResult, bool) {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return domain.Failf("invalid request: %s", err), false
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range cfg.Headers {
			resolved, err := e.resolveTemplate(v, params)
			if err != nil {
				return domain.FailErr(err), false
			}
			req.Header.Set(k, resolved)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			return domain.Failf("request aborted: %s", err), true
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return domain.Failf("failed to read response: %s", err), true
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return domain.Failf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)), resp.StatusCode >= 500
		}

		var gql graphqlResponse
		if err := json.Unmarshal(raw, &gql); err != nil {
			return domain.Failf("invalid graphql response: %s", err), false
		}
		if len(gql.Errors) > 0 {
			messages := make([]string, len(gql.Errors))
			for i, gqlErr := range gql.Errors {
				messages[i] = gqlErr.Message
			}
			return domain.Failf("%s", strings.Join(messages, "; ")), false
		}
		return domain.Succeed(gql.Data), false
	})
}

// parseBody decodes the response body as JSON or text by content type.
func parseBody(resp *http.Response) (any, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, err
		}
		return data, nil
	}
	return string(raw), nil
}

// doWithRetry runs attempt under the action's retry policy. Without a
// policy (the default) the attempt runs exactly once. Backoff doubles after
// each retryable failure; the parent context aborts the wait.
func (e *Executor) doWithRetry(ctx context.Context, policy *domain.RetryPolicy, attempt func(context.Context) (domain.ActionResult, bool)) domain.ActionResult {
	attempts := 1
	backoff := time.Duration(0)
	if policy != nil && policy.MaxAttempts > 1 {
		attempts = policy.MaxAttempts
		backoff = policy.Backoff
	}

	var result domain.ActionResult
	for try := 1; try <= attempts; try++ {
		var retryable bool
		result, retryable = attempt(ctx)
		if result.Success || !retryable || try == attempts {
			return result
		}

		e.logger.Debug("Retrying action", "attempt", try, "of", attempts, "error", result.Error)
		if backoff > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return result
			}
			backoff *= 2
		}
	}
	return result
}
