package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/cel-go/cel"
)

// Filter wraps a compiled CEL program used to narrow message listings.
// When disabled (empty expression), Eval always returns true.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// NewFilter compiles a CEL expression. Variables available to expressions:
//
//	key     string  full message key
//	client  string  writing client's ID (parsed from the key)
//	ts      int     write time, unix seconds (parsed from the key)
//	text    string  payload as text (empty when not valid UTF-8)
//	json    dyn     payload parsed as JSON (null when not JSON)
//	now     int     evaluation time, unix seconds
//
// An empty expression yields a disabled filter.
func NewFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("key", cel.StringType),
		cel.Variable("client", cel.StringType),
		cel.Variable("ts", cel.IntType),
		cel.Variable("text", cel.StringType),
		cel.Variable("json", cel.DynType),
		cel.Variable("now", cel.IntType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Filter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Enabled reports whether the filter carries an expression.
func (f Filter) Enabled() bool { return f.enabled }

// Eval evaluates the expression against one message. Evaluation errors and
// non-boolean results count as no match.
func (f Filter) Eval(key, client string, ts int64, payload []byte, nowUnix int64) bool {
	if !f.enabled {
		return true
	}
	text := ""
	if utf8.Valid(payload) {
		text = string(payload)
	}
	var parsed any
	if len(payload) > 0 && (payload[0] == '{' || payload[0] == '[') {
		_ = json.Unmarshal(payload, &parsed)
	}
	out, _, err := f.prog.Eval(map[string]any{
		"key":    key,
		"client": client,
		"ts":     ts,
		"text":   text,
		"json":   parsed,
		"now":    nowUnix,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// ListMessagesFiltered lists message keys in the window and keeps only those
// the filter matches. Payloads are read for evaluation without touching the
// client's cursor or triggering auto-delete.
func (q *Queue) ListMessagesFiltered(ctx context.Context, mqName string, windowMinutes int, clientID string, f Filter) ([]string, error) {
	keys, err := q.ListMessages(ctx, mqName, windowMinutes, clientID)
	if err != nil || !f.Enabled() {
		return keys, err
	}

	nowUnix := q.now().Unix()
	kept := keys[:0]
	for _, k := range keys {
		client, ts, ok := parseMessageKey(mqName, k)
		if !ok {
			return nil, fmt.Errorf("%w: unparsable message key %q", ErrCorruptBucket, k)
		}
		payload, _, err := q.store.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("queue: filter %s: %w", mqName, err)
		}
		if f.Eval(k, client, ts, payload, nowUnix) {
			kept = append(kept, k)
		}
	}
	return kept, nil
}
