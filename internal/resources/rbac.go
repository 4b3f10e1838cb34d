package resources

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"

	"github.com/bridgecrew-perf6/k8deployer/internal/engine"
)

// BuildServiceAccount builds a bare ServiceAccount, grounded on
// job_rbac.go's DeployServiceAccountJobCtl.
func BuildServiceAccount(c *engine.Component) *corev1.ServiceAccount {
	return &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{Name: c.Name, Namespace: c.Namespace(), Labels: buildLabels(c)},
	}
}

func deployServiceAccount(ctx context.Context, client kubernetes.Interface, sa *corev1.ServiceAccount) error {
	cli := client.CoreV1().ServiceAccounts(sa.Namespace)
	if _, err := cli.Get(ctx, sa.Name, metav1.GetOptions{}); err == nil {
		return nil
	} else if !k8serrors.IsNotFound(err) {
		return fmt.Errorf("get serviceaccount %q: %w", sa.Name, err)
	}
	if _, err := cli.Create(ctx, sa, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("create serviceaccount %q: %w", sa.Name, err)
	}
	klog.Infof("serviceaccount %s/%s created", sa.Namespace, sa.Name)
	return nil
}

func ServiceAccountExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		sa := BuildServiceAccount(c)
		if err := deployServiceAccount(ctx, client, sa); err != nil {
			klog.Errorf("deploy serviceaccount %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetDone()
	}
}

func DeleteServiceAccount(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.CoreV1().ServiceAccounts(c.Namespace()).Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}

// rbacRules reads "rbac.rules" as a tokenized list of
// "apiGroup/resources/verbs" triples (each slash-joined field itself
// comma-separated for multi-value), e.g. "/pods,services/get,list".
func rbacRules(c *engine.Component) []rbacv1.PolicyRule {
	var rules []rbacv1.PolicyRule
	for _, tok := range c.EffectiveArgs().StringList("rbac.rules") {
		parts := splitN3(tok, '/')
		rules = append(rules, rbacv1.PolicyRule{
			APIGroups: splitNonEmpty(parts[0], ','),
			Resources: splitNonEmpty(parts[1], ','),
			Verbs:     splitNonEmpty(parts[2], ','),
		})
	}
	return rules
}

func splitN3(s string, sep byte) [3]string {
	var out [3]string
	idx := 0
	start := 0
	for i := 0; i < len(s) && idx < 2; i++ {
		if s[i] == sep {
			out[idx] = s[start:i]
			idx++
			start = i + 1
		}
	}
	out[idx] = s[start:]
	return out
}

func splitNonEmpty(s string, sep byte) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// BuildRole builds a namespaced Role from "rbac.rules".
func BuildRole(c *engine.Component) *rbacv1.Role {
	return &rbacv1.Role{
		ObjectMeta: metav1.ObjectMeta{Name: c.Name, Namespace: c.Namespace(), Labels: buildLabels(c)},
		Rules:      rbacRules(c),
	}
}

func deployRole(ctx context.Context, client kubernetes.Interface, r *rbacv1.Role) error {
	cli := client.RbacV1().Roles(r.Namespace)
	existing, err := cli.Get(ctx, r.Name, metav1.GetOptions{})
	switch {
	case err == nil:
		r.ResourceVersion = existing.ResourceVersion
		if _, err := cli.Update(ctx, r, metav1.UpdateOptions{}); err != nil {
			return fmt.Errorf("update role %q: %w", r.Name, err)
		}
	case k8serrors.IsNotFound(err):
		if _, err := cli.Create(ctx, r, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("create role %q: %w", r.Name, err)
		}
		klog.Infof("role %s/%s created", r.Namespace, r.Name)
	default:
		return fmt.Errorf("get role %q: %w", r.Name, err)
	}
	return nil
}

func RoleExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		r := BuildRole(c)
		if err := deployRole(ctx, client, r); err != nil {
			klog.Errorf("deploy role %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetDone()
	}
}

func DeleteRole(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.RbacV1().Roles(c.Namespace()).Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}

// BuildClusterRole is Role's cluster-scoped counterpart.
func BuildClusterRole(c *engine.Component) *rbacv1.ClusterRole {
	return &rbacv1.ClusterRole{
		ObjectMeta: metav1.ObjectMeta{Name: c.Name, Labels: buildLabels(c)},
		Rules:      rbacRules(c),
	}
}

func ClusterRoleExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		r := BuildClusterRole(c)
		cli := client.RbacV1().ClusterRoles()
		existing, err := cli.Get(ctx, r.Name, metav1.GetOptions{})
		switch {
		case err == nil:
			r.ResourceVersion = existing.ResourceVersion
			_, err = cli.Update(ctx, r, metav1.UpdateOptions{})
		case k8serrors.IsNotFound(err):
			_, err = cli.Create(ctx, r, metav1.CreateOptions{})
		}
		if err != nil {
			klog.Errorf("deploy clusterrole %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetDone()
	}
}

func DeleteClusterRole(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.RbacV1().ClusterRoles().Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}

// roleRef/subjects shared by RoleBinding/ClusterRoleBinding: "rbac.roleRef"
// names the Role/ClusterRole, "rbac.serviceAccount" the bound
// ServiceAccount (defaulting to the component's own namespace).
func bindingSubjects(c *engine.Component) []rbacv1.Subject {
	sa := c.EffectiveArgs().String("rbac.serviceAccount", "")
	if sa == "" {
		return nil
	}
	return []rbacv1.Subject{{Kind: "ServiceAccount", Name: sa, Namespace: c.Namespace()}}
}

func BuildRoleBinding(c *engine.Component) (*rbacv1.RoleBinding, error) {
	roleRef := c.EffectiveArgs().String("rbac.roleRef", "")
	if roleRef == "" {
		return nil, fmt.Errorf("resources: rolebinding %s/%s missing required arg rbac.roleRef", c.Kind, c.Name)
	}
	return &rbacv1.RoleBinding{
		ObjectMeta: metav1.ObjectMeta{Name: c.Name, Namespace: c.Namespace(), Labels: buildLabels(c)},
		RoleRef:    rbacv1.RoleRef{APIGroup: rbacv1.GroupName, Kind: "Role", Name: roleRef},
		Subjects:   bindingSubjects(c),
	}, nil
}

func RoleBindingExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		rb, err := BuildRoleBinding(c)
		if err != nil {
			klog.Errorf("build rolebinding %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		cli := client.RbacV1().RoleBindings(rb.Namespace)
		if _, err := cli.Get(ctx, rb.Name, metav1.GetOptions{}); err == nil {
			klog.Infof("rolebinding %s/%s already exists, skipping (subjects/roleRef are immutable)", rb.Namespace, rb.Name)
		} else if k8serrors.IsNotFound(err) {
			if _, err := cli.Create(ctx, rb, metav1.CreateOptions{}); err != nil {
				klog.Errorf("create rolebinding %s: %v", c.Name, err)
				t.SetFailed()
				return
			}
			klog.Infof("rolebinding %s/%s created", rb.Namespace, rb.Name)
		} else {
			klog.Errorf("get rolebinding %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetDone()
	}
}

func DeleteRoleBinding(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.RbacV1().RoleBindings(c.Namespace()).Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}

func BuildClusterRoleBinding(c *engine.Component) (*rbacv1.ClusterRoleBinding, error) {
	roleRef := c.EffectiveArgs().String("rbac.roleRef", "")
	if roleRef == "" {
		return nil, fmt.Errorf("resources: clusterrolebinding %s/%s missing required arg rbac.roleRef", c.Kind, c.Name)
	}
	subjects := bindingSubjects(c)
	return &rbacv1.ClusterRoleBinding{
		ObjectMeta: metav1.ObjectMeta{Name: c.Name, Labels: buildLabels(c)},
		RoleRef:    rbacv1.RoleRef{APIGroup: rbacv1.GroupName, Kind: "ClusterRole", Name: roleRef},
		Subjects:   subjects,
	}, nil
}

func ClusterRoleBindingExecutor(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return func(ctx context.Context, t *engine.Task) {
		rb, err := BuildClusterRoleBinding(c)
		if err != nil {
			klog.Errorf("build clusterrolebinding %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		cli := client.RbacV1().ClusterRoleBindings()
		if _, err := cli.Get(ctx, rb.Name, metav1.GetOptions{}); err == nil {
			klog.Infof("clusterrolebinding %s already exists, skipping", rb.Name)
		} else if k8serrors.IsNotFound(err) {
			if _, err := cli.Create(ctx, rb, metav1.CreateOptions{}); err != nil {
				klog.Errorf("create clusterrolebinding %s: %v", c.Name, err)
				t.SetFailed()
				return
			}
			klog.Infof("clusterrolebinding %s created", rb.Name)
		} else {
			klog.Errorf("get clusterrolebinding %s: %v", c.Name, err)
			t.SetFailed()
			return
		}
		t.SetDone()
	}
}

func DeleteClusterRoleBinding(client kubernetes.Interface, c *engine.Component) engine.Executor {
	return engine.SendDelete(false, func(ctx context.Context) error {
		return client.RbacV1().ClusterRoleBindings().Delete(ctx, c.Name, metav1.DeleteOptions{})
	})
}
