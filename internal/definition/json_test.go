package definition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

func writeDef(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "def.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestJSONLoaderParsesNestedChildren(t *testing.T) {
	path := writeDef(t, `{
		"name": "web",
		"kind": "deployment",
		"args": {"pod.image": "nginx:latest"},
		"children": [
			{"name": "web-svc", "kind": "service", "args": {"service.port": "80"}}
		]
	}`)

	loader := NewJSONLoader(nil)
	def, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "web", def.Name)
	assert.Equal(t, "deployment", def.Kind)
	assert.Equal(t, "nginx:latest", def.Args["pod.image"])
	require.Len(t, def.Children, 1)
	assert.Equal(t, "web-svc", def.Children[0].Name)
	assert.Equal(t, "80", def.Children[0].Args["service.port"])
}

func TestJSONLoaderExpandsVariablesBeforeParsing(t *testing.T) {
	path := writeDef(t, `{"name": "web", "kind": "deployment", "args": {"pod.image": "${image}"}}`)

	loader := NewJSONLoader(map[string]string{"image": "nginx:1.27"})
	def, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nginx:1.27", def.Args["pod.image"])
}

func TestJSONLoaderMissingFileReturnsError(t *testing.T) {
	loader := NewJSONLoader(nil)
	_, err := loader.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestJSONLoaderInvalidJSONReturnsError(t *testing.T) {
	path := writeDef(t, `{"name": "web", `)
	loader := NewJSONLoader(nil)
	_, err := loader.Load(path)
	assert.Error(t, err)
}

func TestJSONLoaderUnterminatedVariableTokenReturnsError(t *testing.T) {
	path := writeDef(t, `{"name": "${unterminated"}`)
	loader := NewJSONLoader(nil)
	_, err := loader.Load(path)
	assert.Error(t, err)
}

func TestJSONLoaderSatisfiesDefinitionLoaderInterface(t *testing.T) {
	var _ engine.DefinitionLoader = NewJSONLoader(nil)
}
