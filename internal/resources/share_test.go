package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

func TestNormalizeShareStrategy(t *testing.T) {
	cases := []struct {
		in     string
		want   ShareStrategy
		wantOK bool
	}{
		{"", ShareStrategyDefault, true},
		{"default", ShareStrategyDefault, true},
		{" Default ", ShareStrategyDefault, true},
		{"ignore", ShareStrategyIgnore, true},
		{"IGNORE", ShareStrategyIgnore, true},
		{"force", ShareStrategyForce, true},
		{"bogus", ShareStrategyDefault, false},
	}
	for _, tc := range cases {
		got, ok := normalizeShareStrategy(tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
		assert.Equal(t, tc.wantOK, ok, "input %q", tc.in)
	}
}

func TestShareIgnoredRequiresShareName(t *testing.T) {
	c := engine.NewComponent("cfg", engine.KindConfigMap)
	c.LocalArgs["share.strategy"] = "ignore"
	assert.False(t, shareIgnored(c), "strategy alone, with no share.name, must not trigger ignore")
}

func TestShareIgnoredTrueOnlyWithIgnoreStrategy(t *testing.T) {
	withShare := func(name, strategy string) *engine.Component {
		c := engine.NewComponent("cfg", engine.KindConfigMap)
		c.LocalArgs["share.name"] = name
		if strategy != "" {
			c.LocalArgs["share.strategy"] = strategy
		}
		return c
	}

	assert.True(t, shareIgnored(withShare("shared-cfg", "ignore")))
	assert.False(t, shareIgnored(withShare("shared-cfg", "force")))
	assert.False(t, shareIgnored(withShare("shared-cfg", "default")))
	assert.False(t, shareIgnored(withShare("shared-cfg", "")))
	assert.False(t, shareIgnored(withShare("shared-cfg", "bogus")))

	noShare := engine.NewComponent("cfg", engine.KindConfigMap)
	noShare.LocalArgs["share.strategy"] = "ignore"
	assert.False(t, shareIgnored(noShare))
}
