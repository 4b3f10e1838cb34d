package engine

import (
	"fmt"

	"github.com/bridgecrew-perf6/k8deployer/internal/apperr"
)

// ScanDependencies is invoked once on the root after full tree population
// (spec §4.3). It adds two families of edges:
//  1. namespace ownership: every non-Namespace component whose namespace
//     matches a Namespace component's name depends on that namespace
//     (reversed in REMOVE mode: the namespace is torn down last).
//  2. named `depends`: for every name in a component's Depends list, every
//     component in the tree matching that name becomes a dependency
//     (reversed in REMOVE mode).
func ScanDependencies(root *Component, mode Mode) error {
	var all []*Component
	root.walk(func(c *Component) { all = append(all, c) })

	var namespaces []*Component
	for _, c := range all {
		if c.Kind == KindNamespace {
			namespaces = append(namespaces, c)
		}
	}

	for _, c := range all {
		if c.Kind == KindNamespace {
			continue
		}
		for _, ns := range namespaces {
			if c.Namespace() != ns.Name {
				continue
			}
			if mode == Create {
				if err := addDependency(c, ns); err != nil {
					return err
				}
			} else {
				if err := addDependency(ns, c); err != nil {
					return err
				}
			}
		}
	}

	for _, c := range all {
		for _, name := range c.Depends {
			for _, match := range all {
				if match == c || match.Name != name {
					continue
				}
				if mode == Create {
					if err := addDependency(c, match); err != nil {
						return err
					}
				} else {
					if err := addDependency(match, c); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}

// addDependency inserts a weak edge src->dst ("src depends on dst"). It
// refuses self-edges and rejects the edge if dst already (transitively)
// depends on src, which would close a cycle. Duplicate edges are silently
// skipped (spec §4.3, invariant P1/P6).
func addDependency(src, dst *Component) error {
	if src == dst {
		return fmt.Errorf("%w: %s/%s", apperr.ErrSelfDependency, src.Kind, src.Name)
	}
	for _, existing := range src.dependsOn {
		if existing == dst {
			return nil
		}
	}
	if dependsTransitively(dst, src, map[*Component]bool{}) {
		return fmt.Errorf("%w: %s/%s -> %s/%s", apperr.ErrCircularDependency, src.Kind, src.Name, dst.Kind, dst.Name)
	}
	src.dependsOn = append(src.dependsOn, dst)
	return nil
}

// dependsTransitively reports whether from can reach to by following
// dependsOn edges (a plain DFS with a visited set to bound cycles that
// haven't been rejected yet).
func dependsTransitively(from, to *Component, visited map[*Component]bool) bool {
	if from == to {
		return true
	}
	if visited[from] {
		return false
	}
	visited[from] = true
	for _, d := range from.dependsOn {
		if dependsTransitively(d, to, visited) {
			return true
		}
	}
	return false
}
