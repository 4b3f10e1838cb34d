package config

import (
	"fmt"
	"strings"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// ParseClusterArg parses one "kubeconfig[:k1=v1,k2=v2,...]" CLI argument
// (spec §6) into an engine.ClusterTarget. name defaults to the kubeconfig
// basename before the first '.', else "default".
func ParseClusterArg(arg string) (engine.ClusterTarget, error) {
	kubeconfig, varPart, _ := strings.Cut(arg, ":")
	kubeconfig = strings.TrimSpace(kubeconfig)
	if kubeconfig == "" {
		return engine.ClusterTarget{}, fmt.Errorf("cluster argument %q: empty kubeconfig path", arg)
	}

	vars := make(map[string]string)
	if varPart != "" {
		for _, pair := range strings.Split(varPart, ",") {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return engine.ClusterTarget{}, fmt.Errorf("cluster argument %q: bad variable %q, want k=v", arg, pair)
			}
			vars[strings.TrimSpace(k)] = v
		}
	}

	name := vars["name"]
	if name == "" {
		name = clusterName(kubeconfig)
	}

	return engine.ClusterTarget{
		Name:       name,
		Kubeconfig: kubeconfig,
		Vars:       vars,
	}, nil
}

// ParseClusterArgs parses one ClusterTarget per argument.
func ParseClusterArgs(args []string) ([]engine.ClusterTarget, error) {
	targets := make([]engine.ClusterTarget, 0, len(args))
	for _, arg := range args {
		t, err := ParseClusterArg(arg)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func clusterName(kubeconfig string) string {
	base := kubeconfig
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	if base == "" {
		return "default"
	}
	return base
}
