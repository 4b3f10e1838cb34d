package resources

import (
	"k8s.io/client-go/kubernetes"

	"github.com/bridgecrew-perf6/k8deployer/internal/config"
	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// NewTaskFactory returns the per-kind hook installed via
// engine.SetTaskFactory: for CREATE mode it builds the deploy
// executor/event-closer/probe triple; for REMOVE mode the delete
// executor. internal/engine.KindApp (a pure grouping node) and any kind
// this factory doesn't recognize fall back to engine's synchronous-DONE
// default. dispatcher may be nil (namespace.go falls back to a plain
// client-go get-then-create in that case).
func NewTaskFactory(client kubernetes.Interface, dispatcher config.Dispatcher) func(mode engine.Mode, c *engine.Component) (engine.Executor, engine.EventCloser, engine.ProbeFunc, bool) {
	return func(mode engine.Mode, c *engine.Component) (engine.Executor, engine.EventCloser, engine.ProbeFunc, bool) {
		if mode == engine.Remove {
			return deleteExecutor(client, c), nil, nil, false
		}
		return deployExecutor(client, dispatcher, c)
	}
}

func deployExecutor(client kubernetes.Interface, dispatcher config.Dispatcher, c *engine.Component) (engine.Executor, engine.EventCloser, engine.ProbeFunc, bool) {
	if shareIgnored(c) {
		// share.strategy=ignore: some other component in the tree already
		// owns this resource; this node completes synchronously without
		// touching the cluster, the same fallback KindApp gets.
		return nil, nil, nil, false
	}
	switch c.Kind {
	case engine.KindDeployment:
		return DeploymentExecutor(client, c), DeploymentEventCloser(c), DeploymentProbe(client, c), true
	case engine.KindStatefulSet:
		return StatefulSetExecutor(client, c), StatefulSetEventCloser(c), StatefulSetProbe(client, c), true
	case engine.KindDaemonSet:
		return DaemonSetExecutor(client, c), DaemonSetEventCloser(c), DaemonSetProbe(client, c), true
	case engine.KindJob:
		return JobExecutor(client, c), JobEventCloser(c), JobProbe(client, c), true
	case engine.KindService:
		return ServiceExecutor(client, c), nil, ServiceProbe(client, c), true
	case engine.KindConfigMap:
		return ConfigMapExecutor(client, c), nil, nil, false
	case engine.KindSecret:
		return SecretExecutor(client, c), nil, nil, false
	case engine.KindPersistentVolume:
		return PVCExecutor(client, c), nil, PVCProbe(client, c), true
	case engine.KindIngress:
		return IngressExecutor(client, c), nil, IngressProbe(client, c), true
	case engine.KindNamespace:
		return NamespaceExecutor(client, dispatcher, c), nil, NamespaceProbe(client, c), true
	case engine.KindServiceAccount:
		return ServiceAccountExecutor(client, c), nil, nil, false
	case engine.KindRole:
		return RoleExecutor(client, c), nil, nil, false
	case engine.KindClusterRole:
		return ClusterRoleExecutor(client, c), nil, nil, false
	case engine.KindRoleBinding:
		return RoleBindingExecutor(client, c), nil, nil, false
	case engine.KindClusterRoleBinding:
		return ClusterRoleBindingExecutor(client, c), nil, nil, false
	default:
		// KindApp and any future kind: no API call, completes synchronously.
		return nil, nil, nil, false
	}
}

func deleteExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	if shareIgnored(c) {
		return nil
	}
	switch c.Kind {
	case engine.KindDeployment:
		return DeleteDeployment(client, c)
	case engine.KindStatefulSet:
		return DeleteStatefulSet(client, c)
	case engine.KindDaemonSet:
		return DeleteDaemonSet(client, c)
	case engine.KindJob:
		return DeleteJob(client, c)
	case engine.KindService:
		return DeleteService(client, c)
	case engine.KindConfigMap:
		return DeleteConfigMap(client, c)
	case engine.KindSecret:
		return DeleteSecret(client, c)
	case engine.KindPersistentVolume:
		return DeletePVC(client, c)
	case engine.KindIngress:
		return DeleteIngress(client, c)
	case engine.KindNamespace:
		return DeleteNamespace(client, c)
	case engine.KindServiceAccount:
		return DeleteServiceAccount(client, c)
	case engine.KindRole:
		return DeleteRole(client, c)
	case engine.KindClusterRole:
		return DeleteClusterRole(client, c)
	case engine.KindRoleBinding:
		return DeleteRoleBinding(client, c)
	case engine.KindClusterRoleBinding:
		return DeleteClusterRoleBinding(client, c)
	default:
		return nil
	}
}
