package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(names ...string) *Component {
	var root *Component
	var cur *Component
	for _, n := range names {
		c := NewComponent(n, KindApp)
		if root == nil {
			root = c
			cur = c
			continue
		}
		cur.AddChild(c)
		cur = c
	}
	return root
}

func leaf(root *Component) *Component {
	c := root
	for len(c.Children) > 0 {
		c = c.Children[0]
	}
	return c
}

func TestArgsPodArgsConcatenateRootToLeaf(t *testing.T) {
	root := chain("root", "mid", "leaf")
	root.DefaultArgs["pod.args"] = "--root"
	root.Children[0].DefaultArgs["pod.args"] = "--mid"
	l := leaf(root)
	l.LocalArgs["pod.args"] = "--leaf"

	got := l.EffectiveArgs().String("pod.args", "")
	assert.Equal(t, "--leaf --root --mid", got)
}

func TestArgsFillInIfAbsentClosestAncestorWins(t *testing.T) {
	root := chain("root", "mid", "leaf")
	root.DefaultArgs["image.pullPolicy"] = "Always"
	root.Children[0].DefaultArgs["image.pullPolicy"] = "IfNotPresent"
	l := leaf(root)

	got := l.EffectiveArgs().String("image.pullPolicy", "")
	assert.Equal(t, "IfNotPresent", got)
}

func TestArgsLocalWinsOverAncestors(t *testing.T) {
	root := chain("root", "leaf")
	root.DefaultArgs["image.pullPolicy"] = "Always"
	l := leaf(root)
	l.LocalArgs["image.pullPolicy"] = "Never"

	got := l.EffectiveArgs().String("image.pullPolicy", "")
	assert.Equal(t, "Never", got)
}

func TestArgsBool(t *testing.T) {
	a := NewArgs(map[string]string{"a": "yes", "b": "0", "c": "maybe"})
	v, err := a.Bool("a", false)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = a.Bool("b", true)
	require.NoError(t, err)
	assert.False(t, v)

	_, err = a.Bool("c", false)
	assert.Error(t, err)

	v, err = a.Bool("missing", true)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestArgsInt(t *testing.T) {
	a := NewArgs(map[string]string{"n": "42", "bad": "x"})
	v, err := a.Int("n", 0)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = a.Int("bad", 0)
	assert.Error(t, err)
}

func TestArgsStringListQuoting(t *testing.T) {
	a := NewArgs(map[string]string{"list": "one 'two three' four"})
	got := a.StringList("list")
	assert.Equal(t, []string{"one", "two three", "four"}, got)
}

func TestArgsStringListUnterminatedQuoteClosedAtEnd(t *testing.T) {
	a := NewArgs(map[string]string{"list": "one 'two three"})
	got := a.StringList("list")
	assert.Equal(t, []string{"one", "two three"}, got)
}

func TestArgsEnvList(t *testing.T) {
	a := NewArgs(map[string]string{"env": "FOO=bar BAZ ="})
	got := a.EnvList("env")
	assert.Equal(t, []EnvVar{{Name: "FOO", Value: "bar"}, {Name: "BAZ", Value: ""}}, got)
}

func TestArgsKVMapDuplicatesOverwrite(t *testing.T) {
	a := NewArgs(map[string]string{"env": "FOO=1 FOO=2"})
	got := a.KVMap("env")
	assert.Equal(t, map[string]string{"FOO": "2"}, got)
}
