package engine

import "context"

// K8ObjectState classifies a probe's GET response (spec §4.8).
type K8ObjectState int

const (
	DontExist K8ObjectState = iota
	Init
	Ready
	ObjectDone
	ObjectFailed
)

// ProbeFunc issues a read-only API call and classifies the result. Kinds
// that support probing (kind.Probable()) get one attached to their task;
// internal/kube supplies the concrete implementation per kind.
type ProbeFunc func(ctx context.Context) (K8ObjectState, error)

// runProbe evaluates one probe tick and applies the CREATE/REMOVE
// classification table from spec §4.8.
func runProbe(ctx context.Context, t *Task) {
	if t.probe == nil {
		return
	}
	state, err := t.probe(ctx)
	if err != nil {
		// A probe error is not itself a definitive FAILED classification;
		// treat it like INIT and let the next tick retry, mirroring a
		// transient HTTP error (spec §7.2) rather than aborting on a
		// single hiccup.
		return
	}

	if t.Component.Mode == Create {
		switch state {
		case Ready, ObjectDone:
			t.setState(DONE, true)
		case ObjectFailed:
			t.setState(FAILED, true)
		case DontExist, Init:
			// reschedule: the scheduler's probe timer will fire again.
		}
		return
	}

	// REMOVE mode.
	switch state {
	case DontExist, ObjectDone:
		t.setState(DONE, true)
	case ObjectFailed:
		t.setState(FAILED, true)
	case Init, Ready:
		// still present, reschedule.
	}
}
