package kube

import (
	"context"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

func TestTranslatePodEvent(t *testing.T) {
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "web-0", Namespace: "ns"}}

	cases := []struct {
		name       string
		event      watch.Event
		wantReason string
		wantNil    bool
	}{
		{"added", watch.Event{Type: watch.Added, Object: pod}, "Created", false},
		{"modified", watch.Event{Type: watch.Modified, Object: pod}, "Updated", false},
		{"deleted", watch.Event{Type: watch.Deleted, Object: pod}, "Deleted", false},
		{"bookmark ignored", watch.Event{Type: watch.Bookmark, Object: pod}, "", true},
		{"non-pod object ignored", watch.Event{Type: watch.Added, Object: &corev1.ConfigMap{}}, "", true},
	}

	for _, tc := range cases {
		got := translatePodEvent(tc.event)
		if tc.wantNil {
			assert.Nil(t, got, tc.name)
			continue
		}
		require.NotNil(t, got, tc.name)
		assert.Equal(t, "Pod", got.Kind)
		assert.Equal(t, "web-0", got.Name)
		assert.Equal(t, "ns", got.Namespace)
		assert.Equal(t, tc.wantReason, got.Reason, tc.name)
	}
}

func TestWatchOnceDeliversPodEventsToScheduler(t *testing.T) {
	client := fake.NewSimpleClientset()
	watcher := watch.NewFake()
	client.PrependWatchReactor("pods", k8stesting.DefaultWatchReactor(watcher, nil))

	d := &Driver{Client: client}
	root := engine.NewComponent("root", engine.KindApp)
	sched := engine.NewScheduler(context.Background(), root, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	var delivered bool
	go func() {
		delivered, _ = d.watchOnce(ctx, sched)
		close(done)
	}()

	watcher.Add(&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "web-0", Namespace: "default"}})
	watcher.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watchOnce did not return after watcher closed")
	}
	assert.True(t, delivered)
}

func TestPackageInitInstallsNotFoundClassifier(t *testing.T) {
	assert.NotNil(t, engine.NotFoundClassifier, "kube's init() must install the 404 classifier")
}
