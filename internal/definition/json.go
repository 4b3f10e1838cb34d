// Package definition provides the concrete JSON loader cmd/k8deployer
// wires in behind engine.DefinitionLoader. The loader itself is an
// external collaborator per spec §1 (the core only consumes the narrow
// interface); this is the CLI's own pick of serialization, not a core
// requirement.
package definition

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
	"github.com/bridgecrew-perf6/k8deployer/internal/variables"
)

// jsonNode is the wire form of engine.ComponentDef, kept separate so the
// wire format can evolve independently of the in-process struct. It
// carries every ComponentDef field read from a definition file except
// Payload; no key renaming is applied.
type jsonNode struct {
	Name           string            `json:"name"`
	Kind           string            `json:"kind"`
	Labels         map[string]string `json:"labels,omitempty"`
	Args           map[string]string `json:"args,omitempty"`
	DefaultArgs    map[string]string `json:"defaultArgs,omitempty"`
	Depends        []string          `json:"depends,omitempty"`
	ParentRelation string            `json:"parentRelation,omitempty"`
	Children       []jsonNode        `json:"children,omitempty"`
}

// JSONLoader loads a component-tree definition from a JSON file, expanding
// ${name[,default]} tokens against vars before unmarshaling.
type JSONLoader struct {
	Vars map[string]string
}

// NewJSONLoader builds a loader that expands vars before parsing.
func NewJSONLoader(vars map[string]string) *JSONLoader {
	return &JSONLoader{Vars: vars}
}

// Load implements engine.DefinitionLoader. source is a filesystem path.
func (l *JSONLoader) Load(source string) (*engine.ComponentDef, error) {
	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("definition: read %s: %w", source, err)
	}

	expanded, err := variables.NewExpander(l.Vars).Expand(string(raw))
	if err != nil {
		return nil, fmt.Errorf("definition: expand %s: %w", source, err)
	}

	var root jsonNode
	if err := json.Unmarshal([]byte(expanded), &root); err != nil {
		return nil, fmt.Errorf("definition: parse %s: %w", source, err)
	}
	return toComponentDef(root), nil
}

func toComponentDef(n jsonNode) *engine.ComponentDef {
	def := &engine.ComponentDef{
		Name:           n.Name,
		Kind:           n.Kind,
		Labels:         n.Labels,
		Args:           n.Args,
		DefaultArgs:    n.DefaultArgs,
		Depends:        n.Depends,
		ParentRelation: n.ParentRelation,
	}
	for _, ch := range n.Children {
		def.Children = append(def.Children, toComponentDef(ch))
	}
	return def
}
