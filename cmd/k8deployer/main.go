// Command k8deployer drives a declarative component tree to DONE or
// FAILED across one or more Kubernetes clusters: build the dependency
// graph, schedule tasks off each cluster's own watch stream and readiness
// probes, and report the outcome per cluster.
package main

import (
	"k8s.io/klog/v2"
)

func main() {
	defer klog.Flush()
	if err := Execute(); err != nil {
		klog.Fatalf("k8deployer: %v", err)
	}
}
