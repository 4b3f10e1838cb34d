// Package variables implements the ${name[,default]} substitution applied
// to raw definition text before parsing (spec §6). It is a narrow,
// stdlib-only external-collaborator utility, deliberately kept out of
// internal/engine.
package variables

import (
	"fmt"
	"os"
	"strings"
)

// Expander resolves ${name} / ${name,default} tokens against a variable
// map, falling back to the process environment and finally an empty
// string.
type Expander struct {
	vars map[string]string
	env  func(string) string
}

// NewExpander builds an Expander over the given variable map. env
// defaults to os.Getenv; tests can override it.
func NewExpander(vars map[string]string) *Expander {
	return &Expander{vars: vars, env: os.Getenv}
}

// WithEnvFunc overrides the environment lookup (for tests).
func (e *Expander) WithEnvFunc(fn func(string) string) *Expander {
	e.env = fn
	return e
}

// Expand substitutes every ${...} token in s. Backslash escapes '$' (so
// "\$" produces a literal "$" and does not start a token). Errors on an
// unterminated "{...}" or an illegal character in the variable name
// (anything other than letters, digits, '_', '.', '-').
func (e *Expander) Expand(s string) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == '$':
			b.WriteByte('$')
			i += 2
		case c == '$' && i+1 < len(s) && s[i+1] == '{':
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				return "", fmt.Errorf("variables: unterminated \"{...}\" starting at offset %d", i)
			}
			token := s[i+2 : i+2+end]
			resolved, err := e.resolveToken(token)
			if err != nil {
				return "", err
			}
			b.WriteString(resolved)
			i += 2 + end + 1
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

func (e *Expander) resolveToken(token string) (string, error) {
	name, def, hasDefault := strings.Cut(token, ",")
	if err := validateName(name); err != nil {
		return "", err
	}
	if v, ok := e.vars[name]; ok {
		return v, nil
	}
	if hasDefault {
		// a default of form "$ENVVAR" is itself resolved from the
		// environment (spec §6).
		if strings.HasPrefix(def, "$") {
			envName := def[1:]
			if v := e.env(envName); v != "" {
				return v, nil
			}
			return "", nil
		}
		return def, nil
	}
	if v := e.env(name); v != "" {
		return v, nil
	}
	return "", nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("variables: empty variable name")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '-':
		default:
			return fmt.Errorf("variables: illegal character %q in variable name %q", r, name)
		}
	}
	return nil
}
