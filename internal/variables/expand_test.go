package variables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpanderDefaultFallback(t *testing.T) {
	e := NewExpander(nil).WithEnvFunc(func(string) string { return "" })
	out, err := e.Expand("${PORT,8080}")
	require.NoError(t, err)
	assert.Equal(t, "8080", out)
}

func TestExpanderVarsMapWins(t *testing.T) {
	e := NewExpander(map[string]string{"PORT": "9090"}).WithEnvFunc(func(string) string { return "" })
	out, err := e.Expand("${PORT,8080}")
	require.NoError(t, err)
	assert.Equal(t, "9090", out)
}

func TestExpanderEnvFallbackWhenNoDefault(t *testing.T) {
	e := NewExpander(nil).WithEnvFunc(func(name string) string {
		if name == "HOME_DIR" {
			return "/home/svc"
		}
		return ""
	})
	out, err := e.Expand("${HOME_DIR}")
	require.NoError(t, err)
	assert.Equal(t, "/home/svc", out)
}

func TestExpanderUnknownNameEmptyString(t *testing.T) {
	e := NewExpander(nil).WithEnvFunc(func(string) string { return "" })
	out, err := e.Expand("${NOPE}")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestExpanderDefaultEnvVarForm(t *testing.T) {
	e := NewExpander(nil).WithEnvFunc(func(name string) string {
		if name == "SYS_PORT" {
			return "1234"
		}
		return ""
	})
	out, err := e.Expand("${PORT,$SYS_PORT}")
	require.NoError(t, err)
	assert.Equal(t, "1234", out)
}

func TestExpanderBackslashEscape(t *testing.T) {
	e := NewExpander(nil)
	out, err := e.Expand(`price: \$5`)
	require.NoError(t, err)
	assert.Equal(t, "price: $5", out)
}

func TestExpanderUnterminatedBrace(t *testing.T) {
	e := NewExpander(nil)
	_, err := e.Expand("${PORT")
	require.Error(t, err)
}

func TestExpanderIllegalNameCharacter(t *testing.T) {
	e := NewExpander(nil)
	_, err := e.Expand("${PO RT}")
	require.Error(t, err)
}

// Idempotence (spec invariant P7): expanding a string with no remaining
// ${...} tokens is a no-op.
func TestExpanderIdempotentOnPlainText(t *testing.T) {
	e := NewExpander(map[string]string{"PORT": "9090"})
	once, err := e.Expand("listening on 9090")
	require.NoError(t, err)
	twice, err := e.Expand(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}
