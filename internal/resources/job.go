package resources

import (
	"context"
	"fmt"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// BuildJob builds a batch/v1 Job. "pod.replicas" maps onto Job's
// completions/parallelism pair rather than a ReplicaSet-style replica
// count.
func BuildJob(c *engine.Component) (*batchv1.Job, error) {
	p, err := resolvePodSpecArgs(c)
	if err != nil {
		return nil, err
	}
	labels := buildLabels(c)
	podSpec := buildPodSpec(c.Name, p)
	podSpec.RestartPolicy = corev1.RestartPolicyNever
	completions := int32(p.Replicas)

	return &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{Name: c.Name, Namespace: c.Namespace(), Labels: labels},
		Spec: batchv1.JobSpec{
			Completions: &completions,
			Parallelism: &completions,
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec:       podSpec,
			},
		},
	}, nil
}

func deployJob(ctx context.Context, client kubernetes.Interface, j *batchv1.Job) error {
	cli := client.BatchV1().Jobs(j.Namespace)
	_, err := cli.Get(ctx, j.Name, metav1.GetOptions{})
	switch {
	case err == nil:
		// Job specs are immutable once created; re-deploying an existing
		// Job is a no-op rather than an update attempt.
		klog.Infof("job %s/%s already exists, skipping", j.Namespace, j.Name)
	case k8serrors.IsNotFound(err):
		if _, err := cli.Create(ctx, j, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("create job %q: %w", j.Name, err)
		}
		klog.Infof("job %s/%s created", j.Namespace, j.Name)
	default:
		return fmt.Errorf("get job %q: %w", j.Name, err)
	}
	return nil
}

func JobExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		j, err := BuildJob(c)
		if err != nil {
			klog.Errorf("build job %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		if err := deployJob(ctx, client, j); err != nil {
			klog.Errorf("deploy job %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetWaiting()
	}
}

func JobEventCloser(c *engine.Component) engine.EventCloser {
	p, err := resolvePodSpecArgs(c)
	if err != nil {
		return nil
	}
	return engine.NewPodCreatedCloser(p.Replicas)
}

func JobProbe(client kubernetes.Interface, c *engine.Component) engine.ProbeFunc {
	return func(ctx context.Context) (engine.K8ObjectState, error) {
		j, err := client.BatchV1().Jobs(c.Namespace()).Get(ctx, c.Name, metav1.GetOptions{})
		if err != nil {
			if k8serrors.IsNotFound(err) {
				return engine.DontExist, nil
			}
			return engine.Init, err
		}
		for _, cond := range j.Status.Conditions {
			if cond.Status != corev1.ConditionTrue {
				continue
			}
			switch cond.Type {
			case batchv1.JobComplete:
				return engine.ObjectDone, nil
			case batchv1.JobFailed:
				return engine.ObjectFailed, nil
			}
		}
		return engine.Init, nil
	}
}

func DeleteJob(client kubernetes.Interface, c *engine.Component) engine.Executor {
	propagation := metav1.DeletePropagationBackground
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.BatchV1().Jobs(c.Namespace()).Delete(ctx, c.Name, metav1.DeleteOptions{
			PropagationPolicy: &propagation,
		})
	})
}
