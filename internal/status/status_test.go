package status

import (
	"sync"
	"testing"
)

func TestTracker_InitialState(t *testing.T) {
	tracker := NewTracker()
	snap := tracker.Snapshot()

	if snap.State != StateIdle {
		t.Errorf("State = %q, want idle", snap.State)
	}
	if snap.LastOutcome != OutcomeNone {
		t.Errorf("LastOutcome = %q, want empty", snap.LastOutcome)
	}
	if snap.ProcessesPerformed != 0 {
		t.Errorf("ProcessesPerformed = %d, want 0", snap.ProcessesPerformed)
	}
}

func TestTracker_WorkingThenIdle(t *testing.T) {
	tracker := NewTracker()

	tracker.Started("/videos/clip.mp4")
	if snap := tracker.Snapshot(); snap.State != StateWorking || snap.LastSourcePath != "/videos/clip.mp4" {
		t.Errorf("after Started: %+v", snap)
	}

	tracker.Finished(OutcomeSuccess)
	snap := tracker.Snapshot()
	if snap.State != StateIdle {
		t.Errorf("State = %q, want idle after Finished", snap.State)
	}
	if snap.LastOutcome != OutcomeSuccess {
		t.Errorf("LastOutcome = %q, want success", snap.LastOutcome)
	}
	if snap.ProcessesPerformed != 1 {
		t.Errorf("ProcessesPerformed = %d, want 1", snap.ProcessesPerformed)
	}
	if snap.LastFinished.IsZero() {
		t.Error("LastFinished should be set")
	}
}

func TestTracker_SkippedAndFailedDoNotCount(t *testing.T) {
	tracker := NewTracker()

	tracker.Started("a.mp4")
	tracker.Finished(OutcomeSkipped)
	tracker.Started("b.mp4")
	tracker.Finished(OutcomeFailed)

	if snap := tracker.Snapshot(); snap.ProcessesPerformed != 0 {
		t.Errorf("ProcessesPerformed = %d, want 0", snap.ProcessesPerformed)
	}
}

func TestTracker_ConcurrentUpdates(t *testing.T) {
	tracker := NewTracker()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Started("clip.mp4")
			tracker.Finished(OutcomeSuccess)
		}()
	}
	wg.Wait()

	if snap := tracker.Snapshot(); snap.ProcessesPerformed != 50 {
		t.Errorf("ProcessesPerformed = %d, want 50", snap.ProcessesPerformed)
	}
}
