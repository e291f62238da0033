package gpio

import (
	"testing"
	"time"
)

func TestDebouncer_AcceptsCleanTransitions(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	now := time.Now()

	if !d.observe(true, now) {
		t.Fatal("First press should be accepted")
	}
	if !d.observe(false, now.Add(200*time.Millisecond)) {
		t.Fatal("Release after 200ms should be accepted")
	}
}

func TestDebouncer_SuppressesBounce(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	now := time.Now()

	if !d.observe(true, now) {
		t.Fatal("First press should be accepted")
	}

	// Contact bounce: rapid flips within the suppression window
	if d.observe(false, now.Add(5*time.Millisecond)) {
		t.Error("Bounce release at 5ms should be suppressed")
	}
	if d.observe(true, now.Add(10*time.Millisecond)) {
		t.Error("Bounce press at 10ms should be suppressed")
	}

	// Real release after the window
	if !d.observe(false, now.Add(60*time.Millisecond)) {
		t.Error("Release at 60ms should be accepted")
	}
}

func TestDebouncer_IgnoresRepeatedLevel(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	now := time.Now()

	d.observe(true, now)
	if d.observe(true, now.Add(time.Second)) {
		t.Error("Repeated pressed sample should not be a transition")
	}
}

func TestDebouncer_IntervalTunable(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	now := time.Now()

	d.observe(true, now)
	d.setInterval(5 * time.Millisecond)

	if !d.observe(false, now.Add(10*time.Millisecond)) {
		t.Error("Release should be accepted once the interval is shortened")
	}
}

func TestOpen_NilLogger(t *testing.T) {
	// Open must tolerate a nil logger; its logging calls would otherwise
	// panic after pin setup on real hardware
	d, err := Open(DefaultConfig(), nil)
	if err != nil {
		t.Skipf("GPIO hardware not available: %v", err)
	}
	d.SetDebounce(10 * time.Millisecond)
	if closeErr := d.Close(); closeErr != nil {
		t.Errorf("Close failed: %v", closeErr)
	}
}

func TestMock_RecordsClampedWrites(t *testing.T) {
	m := NewMock(nil)

	if err := m.SetRGB(1.5, -0.5, 0.3); err != nil {
		t.Fatalf("SetRGB failed: %v", err)
	}

	got := m.Last()
	want := [3]float64{1, 0, 0.3}
	if got != want {
		t.Errorf("Expected clamped write %v, got %v", want, got)
	}
}

func TestMock_SimulatedButton(t *testing.T) {
	m := NewMock(nil)

	presses := 0
	releases := 0
	m.OnPress(func() { presses++ })
	m.OnRelease(func() { releases++ })

	m.Press()
	m.Release()
	m.Press()

	if presses != 2 || releases != 1 {
		t.Errorf("Expected 2 presses and 1 release, got %d and %d", presses, releases)
	}
}
