package engine

import (
	"fmt"
	"regexp"
)

// ComponentDef is the declarative shape the (out-of-scope, spec §1) JSON/
// YAML loader produces: {name, kind, labels, args, defaultArgs, depends,
// parentRelation, children, <kind-specific payload>} (spec §6).
type ComponentDef struct {
	Name           string
	Kind           string
	Labels         map[string]string
	Args           map[string]string
	DefaultArgs    map[string]string
	Depends        []string
	ParentRelation string // "BEFORE", "AFTER", "INDEPENDENT"; default AFTER
	Payload        Payload
	Children       []*ComponentDef
}

// DefinitionLoader is the external collaborator that turns a source (file
// path, inline text, ...) into a ComponentDef tree. Concrete
// implementations (JSON/YAML) live outside the core per spec §1.
type DefinitionLoader interface {
	Load(source string) (*ComponentDef, error)
}

func parseParentRelation(s string) ParentRelation {
	switch s {
	case "BEFORE":
		return Before
	case "INDEPENDENT":
		return Independent
	default:
		return After
	}
}

// Populate builds a Component tree from def, filtering names through
// includeRe/excludeRe (nil means "match everything" / "match nothing").
// A node that fails the filter drops its entire subtree (spec §6).
func Populate(def *ComponentDef, includeRe, excludeRe *regexp.Regexp) (*Component, error) {
	if def == nil {
		return nil, fmt.Errorf("populate: nil definition")
	}
	c, err := populateNode(def, includeRe, excludeRe)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("populate: root %q excluded by filter", def.Name)
	}
	return c, nil
}

func populateNode(def *ComponentDef, includeRe, excludeRe *regexp.Regexp) (*Component, error) {
	if includeRe != nil && !includeRe.MatchString(def.Name) {
		return nil, nil
	}
	if excludeRe != nil && excludeRe.MatchString(def.Name) {
		return nil, nil
	}

	kind, err := ParseKind(def.Kind)
	if err != nil {
		return nil, err
	}

	c := NewComponent(def.Name, kind)
	for k, v := range def.Labels {
		c.Labels[k] = v
	}
	for k, v := range def.Args {
		c.LocalArgs[k] = v
	}
	for k, v := range def.DefaultArgs {
		c.DefaultArgs[k] = v
	}
	c.Depends = append(c.Depends, def.Depends...)
	c.ParentRelation = parseParentRelation(def.ParentRelation)
	c.Payload = def.Payload

	for _, childDef := range def.Children {
		child, err := populateNode(childDef, includeRe, excludeRe)
		if err != nil {
			return nil, err
		}
		if child == nil {
			continue
		}
		c.AddChild(child)
	}
	return c, nil
}
