// Package apperr defines the fixed configuration-error sentinels used
// across internal/engine, so callers can classify failures with errors.Is
// instead of string matching, matching the bcode style of
// pkg/apiserver/utils/bcode.
package apperr

import "errors"

var (
	// ErrUnknownKind is returned when a component's kind string does not
	// match the closed kind enumeration.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrCircularDependency is returned by the dependency scanner when
	// addDependency would close a cycle in the component dependsOn graph.
	ErrCircularDependency = errors.New("circular dependency")

	// ErrCircularTaskDependency is returned by the task graph builder when
	// a task is found in its own transitive dependency closure.
	ErrCircularTaskDependency = errors.New("circular task dependency")

	// ErrUnknownArgValue is returned by the typed argument accessors when a
	// raw argument string cannot be parsed into the requested type.
	ErrUnknownArgValue = errors.New("unknown argument value")

	// ErrSelfDependency is returned by addDependency when src == dst.
	ErrSelfDependency = errors.New("self dependency")
)
