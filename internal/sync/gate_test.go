package sync

import (
	"errors"
	"sort"
	"testing"
)

func TestRunGate_AcquireRelease(t *testing.T) {
	gate := NewRunGate()

	if err := gate.Acquire(DomainProducts); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}

	if err := gate.Acquire(DomainProducts); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("second Acquire = %v, want ErrSyncInProgress", err)
	}

	// A different domain is independent.
	if err := gate.Acquire(DomainImages); err != nil {
		t.Errorf("Acquire for another domain failed: %v", err)
	}

	gate.Release(DomainProducts)
	if err := gate.Acquire(DomainProducts); err != nil {
		t.Errorf("Acquire after Release failed: %v", err)
	}
}

func TestRunGate_Active(t *testing.T) {
	gate := NewRunGate()

	if got := gate.Active(); len(got) != 0 {
		t.Errorf("Active() = %v, want empty", got)
	}

	gate.Acquire(DomainProducts)
	gate.Acquire(DomainPriceLists)

	got := gate.Active()
	sort.Strings(got)
	if len(got) != 2 || got[0] != DomainPriceLists || got[1] != DomainProducts {
		t.Errorf("Active() = %v, want [%s %s]", got, DomainPriceLists, DomainProducts)
	}
}
