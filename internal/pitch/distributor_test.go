// SPDX-License-Identifier: MIT
package pitch

import (
	"errors"
	"testing"
	"time"
)

func TestDistributorPublishAndLatest(t *testing.T) {
	d := NewDistributor()

	var got []uint64
	unsub := d.Subscribe(func(s Sample) error {
		got = append(got, s.WindowID)
		return nil
	})
	defer unsub()

	d.Publish(Sample{WindowID: 1, Frequency: 220})
	d.Publish(Sample{WindowID: 2, Frequency: 221})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("listener calls: got %v, want [1 2]", got)
	}
	if d.Latest().WindowID != 2 {
		t.Errorf("latest: got window %d, want 2", d.Latest().WindowID)
	}
}

func TestDistributorDeduplicatesWindowIDs(t *testing.T) {
	d := NewDistributor()

	calls := 0
	defer d.Subscribe(func(Sample) error {
		calls++
		return nil
	})()

	if !d.Publish(Sample{WindowID: 7, Frequency: 220}) {
		t.Fatal("first publish must succeed")
	}
	if d.Publish(Sample{WindowID: 7, Frequency: 440}) {
		t.Error("republishing the same window id must be a no-op")
	}
	if calls != 1 {
		t.Errorf("listener calls: got %d, want 1", calls)
	}
	// The duplicate must not overwrite the stored sample either.
	if d.Latest().Frequency != 220 {
		t.Errorf("latest frequency: got %.1f, want 220", d.Latest().Frequency)
	}
}

func TestDistributorIsolatesFaultyListeners(t *testing.T) {
	d := NewDistributor()

	delivered := 0
	defer d.Subscribe(func(Sample) error {
		return errors.New("consumer bug")
	})()
	defer d.Subscribe(func(Sample) error {
		panic("worse consumer bug")
	})()
	defer d.Subscribe(func(Sample) error {
		delivered++
		return nil
	})()

	d.Publish(Sample{WindowID: 1})
	d.Publish(Sample{WindowID: 2})

	if delivered != 2 {
		t.Errorf("healthy listener deliveries: got %d, want 2", delivered)
	}
	if d.Failures() != 4 {
		t.Errorf("recorded failures: got %d, want 4", d.Failures())
	}
}

func TestDistributorUnsubscribeDuringPublish(t *testing.T) {
	d := NewDistributor()

	var unsubOther func()
	calls := 0
	defer d.Subscribe(func(Sample) error {
		// Removing a listener mid-publish must not deadlock or panic.
		unsubOther()
		return nil
	})()
	unsubOther = d.Subscribe(func(Sample) error {
		calls++
		return nil
	})

	d.Publish(Sample{WindowID: 1})
	d.Publish(Sample{WindowID: 2})

	// The second listener saw at most the publish that snapshotted it.
	if calls > 1 {
		t.Errorf("unsubscribed listener called %d times after removal", calls)
	}
}

func TestDistributorFreshness(t *testing.T) {
	d := NewDistributor()
	now := time.Now()

	if d.Active(now) {
		t.Error("no sample yet: must not be active")
	}

	d.SetStreaming(true)
	d.Publish(Sample{WindowID: 1, Timestamp: now})
	if !d.Active(now.Add(time.Second)) {
		t.Error("fresh sample while streaming: must be active")
	}
	if d.Active(now.Add(3 * time.Second)) {
		t.Error("stale sample: must not be active")
	}

	d.SetStreaming(false)
	if d.Active(now.Add(time.Second)) {
		t.Error("not streaming: must not be active")
	}
	// Stopping never clears the last sample.
	if d.Latest().WindowID != 1 {
		t.Error("latest sample must survive streaming stop")
	}
}
