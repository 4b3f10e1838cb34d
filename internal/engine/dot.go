package engine

import (
	"fmt"
	"strings"
)

// WriteDOT renders the component dependsOn graph and the task dependency
// graph as two subgraphs in a single DOT document, per spec §6.
func WriteDOT(root *Component, tasks []*Task) string {
	var b strings.Builder
	b.WriteString("digraph k8deployer {\n")

	b.WriteString("  subgraph cluster_components {\n")
	b.WriteString("    label=\"components\";\n")
	root.walk(func(c *Component) {
		for _, d := range c.dependsOn {
			fmt.Fprintf(&b, "    %q -> %q;\n", c.Name, d.Name)
		}
	})
	b.WriteString("  }\n")

	b.WriteString("  subgraph cluster_tasks {\n")
	b.WriteString("    label=\"tasks\";\n")
	for _, t := range tasks {
		for _, d := range t.deps {
			fmt.Fprintf(&b, "    %q -> %q;\n", t.Name, d.Name)
		}
	}
	b.WriteString("  }\n")

	b.WriteString("}\n")
	return b.String()
}

// DotFileName is "<rootname>-<dotfile>" per spec §6.
func DotFileName(root *Component, dotfile string) string {
	return root.Name + "-" + dotfile
}
