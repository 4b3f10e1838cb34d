package engine

import (
	"fmt"
	"strings"

	"github.com/bridgecrew-perf6/k8deployer/internal/apperr"
)

// Kind is the closed enumeration of resource kinds a component can be.
// Textual-to-enum conversion is the only entry point; there is no open
// extension mechanism (spec §4.1).
type Kind string

const (
	KindApp                Kind = "APP"
	KindJob                Kind = "JOB"
	KindDeployment         Kind = "DEPLOYMENT"
	KindStatefulSet        Kind = "STATEFULSET"
	KindService            Kind = "SERVICE"
	KindConfigMap          Kind = "CONFIGMAP"
	KindSecret             Kind = "SECRET"
	KindPersistentVolume   Kind = "PERSISTENTVOLUME"
	KindIngress            Kind = "INGRESS"
	KindNamespace          Kind = "NAMESPACE"
	KindDaemonSet          Kind = "DAEMONSET"
	KindRole               Kind = "ROLE"
	KindClusterRole        Kind = "CLUSTERROLE"
	KindRoleBinding        Kind = "ROLEBINDING"
	KindClusterRoleBinding Kind = "CLUSTERROLEBINDING"
	KindServiceAccount     Kind = "SERVICEACCOUNT"
)

// kindSpec is the per-kind operations table entry (spec §9 "polymorphism by
// kind"). Most kinds need only the shared generic task closure; a handful
// (Deployment/StatefulSet/DaemonSet/Job) produce pods and therefore wait on
// events/probes instead of completing synchronously.
type kindSpec struct {
	// ProducesPods marks kinds whose deploy task moves to WAITING and is
	// closed by pod-created event correlation and/or readiness probing,
	// rather than completing the moment the API call returns (spec §4.5).
	ProducesPods bool

	// Probable marks kinds that support probe() (spec §4.8).
	Probable bool

	// Namespaced marks kinds that live inside a namespace (cluster-scoped
	// kinds like ClusterRole/ClusterRoleBinding/Namespace itself are not).
	Namespaced bool
}

var kindTable = map[Kind]kindSpec{
	KindApp:                {ProducesPods: false, Probable: false, Namespaced: true},
	KindJob:                {ProducesPods: true, Probable: true, Namespaced: true},
	KindDeployment:         {ProducesPods: true, Probable: true, Namespaced: true},
	KindStatefulSet:        {ProducesPods: true, Probable: true, Namespaced: true},
	KindDaemonSet:          {ProducesPods: true, Probable: true, Namespaced: true},
	KindService:            {ProducesPods: false, Probable: true, Namespaced: true},
	KindConfigMap:          {ProducesPods: false, Probable: false, Namespaced: true},
	KindSecret:             {ProducesPods: false, Probable: false, Namespaced: true},
	KindPersistentVolume:   {ProducesPods: false, Probable: true, Namespaced: true},
	KindIngress:            {ProducesPods: false, Probable: true, Namespaced: true},
	KindNamespace:          {ProducesPods: false, Probable: true, Namespaced: false},
	KindRole:               {ProducesPods: false, Probable: false, Namespaced: true},
	KindClusterRole:        {ProducesPods: false, Probable: false, Namespaced: false},
	KindRoleBinding:        {ProducesPods: false, Probable: false, Namespaced: true},
	KindClusterRoleBinding: {ProducesPods: false, Probable: false, Namespaced: false},
	KindServiceAccount:     {ProducesPods: false, Probable: false, Namespaced: true},
}

// ParseKind converts a textual resource kind to its enum value.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := kindTable[k]; !ok {
		return "", fmt.Errorf("%w: %q", apperr.ErrUnknownKind, s)
	}
	return k, nil
}

func (k Kind) spec() kindSpec {
	// ParseKind is the only constructor of a Kind used inside the engine,
	// so a missing entry here is a programming error, not user input.
	s, ok := kindTable[k]
	if !ok {
		panic(fmt.Sprintf("engine: kind %q missing from operations table", k))
	}
	return s
}

// ProducesPods reports whether kind's deploy task waits on pod-created
// event correlation / probing instead of completing synchronously.
func (k Kind) ProducesPods() bool { return k.spec().ProducesPods }

// Probable reports whether kind supports the readiness probe (spec §4.8).
func (k Kind) Probable() bool { return k.spec().Probable }

// Namespaced reports whether kind is scoped to a namespace.
func (k Kind) Namespaced() bool { return k.spec().Namespaced }
