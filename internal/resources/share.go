package resources

import (
	"strings"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// ShareStrategy mirrors config.ShareStrategy: how a component that names a
// shared resource (two components pointing at, say, the same ConfigMap)
// should behave when its own copy of that resource would otherwise be
// created too.
type ShareStrategy string

const (
	ShareStrategyDefault ShareStrategy = "default"
	ShareStrategyIgnore  ShareStrategy = "ignore"
	ShareStrategyForce   ShareStrategy = "force"
)

// normalizeShareStrategy mirrors config.NormalizeShareStrategy: an unknown
// or empty string normalizes to "default" without being treated as valid
// input.
func normalizeShareStrategy(s string) (ShareStrategy, bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "":
		return ShareStrategyDefault, true
	case string(ShareStrategyDefault):
		return ShareStrategyDefault, true
	case string(ShareStrategyIgnore):
		return ShareStrategyIgnore, true
	case string(ShareStrategyForce):
		return ShareStrategyForce, true
	default:
		return ShareStrategyDefault, false
	}
}

// shareIgnored reports whether c declares "share.name" with strategy
// "ignore": the component describes a resource another component in the
// tree already owns, so this copy contributes no task of its own.
//
// "default" is treated the same as "force" here rather than attempting the
// teacher's live list-then-lock dedup (event/workflow/job/shared.go's
// resolveSharedResource): that needs a distributed lock keyed off a cache
// backend, which spec's Non-goals keep out of the core engine. Kubernetes'
// own apply semantics make a duplicate create harmless for the kinds this
// engine manages (Service/ConfigMap/Secret are idempotent to re-apply;
// workloads with the same name simply update in place), so only the
// explicit "ignore" opt-out is honored.
func shareIgnored(c *engine.Component) bool {
	args := c.EffectiveArgs()
	name := strings.TrimSpace(args.String("share.name", ""))
	if name == "" {
		return false
	}
	strategy, _ := normalizeShareStrategy(args.String("share.strategy", ""))
	return strategy == ShareStrategyIgnore
}
