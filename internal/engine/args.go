package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bridgecrew-perf6/k8deployer/internal/apperr"
)

// concatKeys are the defaultArgs keys that accumulate root-to-leaf instead
// of being resolved fill-in-if-absent. See spec §4.2.
var concatKeys = map[string]bool{
	"pod.args": true,
	"pod.env":  true,
}

// Args is a component's resolved key->value map, the result of merging
// node-local args with every ancestor's defaultArgs per spec §4.2. It also
// exposes the typed accessors used by resource builders.
type Args struct {
	m map[string]string
}

// NewArgs seeds an Args with a node's own local args. Local args always win
// the merge policies below because they are already present before any
// ancestor is consulted.
func NewArgs(local map[string]string) *Args {
	m := make(map[string]string, len(local))
	for k, v := range local {
		m[k] = v
	}
	return &Args{m: m}
}

// mergeDefault applies one ancestor's defaultArgs entry using the key's
// merge policy. Called root-to-leaf is wrong; per spec the walk goes from
// the node up to the root and applies entries as they're encountered, so
// callers must invoke this starting from the nearest ancestor and moving
// outward for fill-in-if-absent to pick "the first value seen (closest
// ancestor)", and concatenation accumulates in ancestor order regardless.
func (a *Args) mergeDefault(k, v string) {
	if concatKeys[k] {
		if cur, ok := a.m[k]; ok && cur != "" {
			if v != "" {
				a.m[k] = cur + " " + v
			}
		} else if v != "" {
			a.m[k] = v
		}
		return
	}
	if _, ok := a.m[k]; !ok {
		a.m[k] = v
	}
}

// resolveEffectiveArgs walks a component from itself to the root, applying
// each ancestor's defaultArgs to the node's own (already-seeded) Args.
//
// The concatenation policy wants "local + ancestors root-to-near" (spec
// P5), i.e. the outermost ancestor's value should appear first, while
// fill-in-if-absent keys take the closest ancestor's value. The chain is
// collected node->root (nearest ancestor first): fill-in keys are applied
// in that order, concat keys in reverse (root first), so the concatenated
// string reads local, then root-to-leaf.
func resolveEffectiveArgs(c *Component) *Args {
	a := NewArgs(c.LocalArgs)
	var chain []*Component
	for p := c.Parent; p != nil; p = p.Parent {
		chain = append(chain, p)
	}
	for _, anc := range chain {
		for k, v := range anc.DefaultArgs {
			if !concatKeys[k] {
				a.mergeDefault(k, v)
			}
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].DefaultArgs {
			if concatKeys[k] {
				a.mergeDefault(k, v)
			}
		}
	}
	return a
}

// String returns the raw string value for key, or def if absent.
func (a *Args) String(key, def string) string {
	if v, ok := a.m[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (a *Args) Has(key string) bool {
	_, ok := a.m[key]
	return ok
}

// Bool parses {true,yes,1}->true, {false,no,0}->false; any other non-empty
// value is an error. Absent key returns def.
func (a *Args) Bool(key string, def bool) (bool, error) {
	v, ok := a.m[key]
	if !ok || v == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: arg %q = %q is not a boolean", apperr.ErrUnknownArgValue, key, v)
	}
}

// Int parses a decimal integer; absent key returns def, non-empty
// non-numeric value is an error.
func (a *Args) Int(key string, def int) (int, error) {
	v, ok := a.m[key]
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: arg %q = %q is not an integer", apperr.ErrUnknownArgValue, key, v)
	}
	return n, nil
}

// StringList splits the value on whitespace; a single-quoted token protects
// embedded spaces. An unterminated quote is closed at end-of-string rather
// than erroring (see Open Question #1, spec §9): quote characters only
// terminate quoted strings, spaces only terminate unquoted strings.
func (a *Args) StringList(key string) []string {
	v, ok := a.m[key]
	if !ok || v == "" {
		return nil
	}
	return tokenize(v)
}

type tokenizerState int

const (
	stateBetween tokenizerState = iota
	stateInString
	stateInQuotedString
)

func tokenize(s string) []string {
	var out []string
	var cur strings.Builder
	state := stateBetween
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch state {
		case stateBetween:
			switch {
			case r == '\'':
				state = stateInQuotedString
			case r == ' ' || r == '\t' || r == '\n':
				// stay between tokens
			default:
				cur.WriteRune(r)
				state = stateInString
			}
		case stateInString:
			if r == ' ' || r == '\t' || r == '\n' {
				flush()
				state = stateBetween
			} else {
				// quote characters only terminate quoted strings: an
				// unquoted token simply absorbs a stray quote.
				cur.WriteRune(r)
			}
		case stateInQuotedString:
			if r == '\'' {
				flush()
				state = stateBetween
			} else {
				// spaces only terminate unquoted strings.
				cur.WriteRune(r)
			}
		}
	}
	flush()
	return out
}

// EnvVar is one NAME=value (or bare NAME) token.
type EnvVar struct {
	Name  string
	Value string
}

// EnvList tokenizes key the same way as StringList, then splits each token
// on the first '='. Bare names get an empty value. Empty names are
// dropped.
func (a *Args) EnvList(key string) []EnvVar {
	var out []EnvVar
	for _, tok := range a.StringList(key) {
		name, value, _ := strings.Cut(tok, "=")
		if name == "" {
			continue
		}
		out = append(out, EnvVar{Name: name, Value: value})
	}
	return out
}

// KVMap is EnvList folded into a map; later duplicates overwrite earlier
// ones.
func (a *Args) KVMap(key string) map[string]string {
	m := make(map[string]string)
	for _, ev := range a.EnvList(key) {
		m[ev.Name] = ev.Value
	}
	return m
}
