package resources

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// BuildStatefulSet is the StatefulSet analogue of BuildDeployment,
// grounded directly on job_statefulset.go's GenerateStoreService, plus an
// optional volume claim template when "storage.size" is set.
func BuildStatefulSet(c *engine.Component) (*appsv1.StatefulSet, error) {
	p, err := resolvePodSpecArgs(c)
	if err != nil {
		return nil, err
	}
	labels := buildLabels(c)
	replicas := int32(p.Replicas)
	podSpec := buildPodSpec(c.Name, p)

	var vcts []corev1.PersistentVolumeClaim
	a := c.EffectiveArgs()
	if size := a.String("storage.size", ""); size != "" {
		pvc, err := buildPVCTemplate("data", a.String("storage.class", ""), size)
		if err != nil {
			return nil, err
		}
		vcts = append(vcts, pvc)
		podSpec.Containers[0].VolumeMounts = append(podSpec.Containers[0].VolumeMounts, corev1.VolumeMount{
			Name:      "data",
			MountPath: a.String("storage.mountPath", "/data"),
		})
	}

	return &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{
			Name:      c.Name,
			Namespace: c.Namespace(),
			Labels:    labels,
		},
		Spec: appsv1.StatefulSetSpec{
			ServiceName:         c.Name,
			Replicas:            &replicas,
			Selector:            &metav1.LabelSelector{MatchLabels: labels},
			Template:            corev1.PodTemplateSpec{ObjectMeta: metav1.ObjectMeta{Labels: labels}, Spec: podSpec},
			VolumeClaimTemplates: vcts,
		},
	}, nil
}

func buildPVCTemplate(name, storageClass, size string) (corev1.PersistentVolumeClaim, error) {
	qty, err := resource.ParseQuantity(size)
	if err != nil {
		return corev1.PersistentVolumeClaim{}, fmt.Errorf("resources: invalid storage size %q: %w", size, err)
	}
	pvc := corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{corev1.ResourceStorage: qty},
			},
		},
	}
	if storageClass != "" {
		pvc.Spec.StorageClassName = &storageClass
	}
	return pvc, nil
}

func deployStatefulSet(ctx context.Context, client kubernetes.Interface, s *appsv1.StatefulSet) error {
	cli := client.AppsV1().StatefulSets(s.Namespace)
	existing, err := cli.Get(ctx, s.Name, metav1.GetOptions{})
	switch {
	case err == nil:
		s.ResourceVersion = existing.ResourceVersion
		if _, err := cli.Update(ctx, s, metav1.UpdateOptions{}); err != nil {
			return fmt.Errorf("update statefulset %q: %w", s.Name, err)
		}
		klog.Infof("statefulset %s/%s updated", s.Namespace, s.Name)
	case k8serrors.IsNotFound(err):
		if _, err := cli.Create(ctx, s, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("create statefulset %q: %w", s.Name, err)
		}
		klog.Infof("statefulset %s/%s created", s.Namespace, s.Name)
	default:
		return fmt.Errorf("get statefulset %q: %w", s.Name, err)
	}
	return nil
}

func StatefulSetExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		s, err := BuildStatefulSet(c)
		if err != nil {
			klog.Errorf("build statefulset %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		if err := deployStatefulSet(ctx, client, s); err != nil {
			klog.Errorf("deploy statefulset %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetWaiting()
	}
}

func StatefulSetEventCloser(c *engine.Component) engine.EventCloser {
	p, err := resolvePodSpecArgs(c)
	if err != nil {
		return nil
	}
	return engine.NewPodCreatedCloser(p.Replicas)
}

func StatefulSetProbe(client kubernetes.Interface, c *engine.Component) engine.ProbeFunc {
	return func(ctx context.Context) (engine.K8ObjectState, error) {
		s, err := client.AppsV1().StatefulSets(c.Namespace()).Get(ctx, c.Name, metav1.GetOptions{})
		if err != nil {
			if k8serrors.IsNotFound(err) {
				return engine.DontExist, nil
			}
			return engine.Init, err
		}
		wanted := int32(1)
		if s.Spec.Replicas != nil {
			wanted = *s.Spec.Replicas
		}
		if s.Status.ReadyReplicas >= wanted && s.Status.CurrentReplicas >= wanted {
			return engine.Ready, nil
		}
		return engine.Init, nil
	}
}

func DeleteStatefulSet(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.AppsV1().StatefulSets(c.Namespace()).Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}
