package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManager_OneShot(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	fired := make(chan struct{})
	m.Add(100*time.Millisecond, 0, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("One-shot task never fired")
	}
}

func TestManager_Repeating(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var count int64
	m.Add(50*time.Millisecond, 100*time.Millisecond, func() {
		atomic.AddInt64(&count, 1)
	})

	deadline := time.Now().Add(3 * time.Second)
	for atomic.LoadInt64(&count) < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("Repeating task fired %d times, want at least 3", atomic.LoadInt64(&count))
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestManager_Remove(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired int64
	id := m.Add(300*time.Millisecond, 0, func() {
		atomic.AddInt64(&fired, 1)
	})
	m.Remove(id)

	time.Sleep(600 * time.Millisecond)
	if atomic.LoadInt64(&fired) != 0 {
		t.Error("A removed task must not fire")
	}
}

func TestManager_SimultaneousBurst(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	// Far more tasks due in the same tick than any internal buffering.
	const tasks = 2000
	var fired int64
	for i := 0; i < tasks; i++ {
		m.Add(50*time.Millisecond, 0, func() {
			atomic.AddInt64(&fired, 1)
		})
	}

	deadline := time.Now().Add(5 * time.Second)
	for atomic.LoadInt64(&fired) < tasks {
		if time.Now().After(deadline) {
			t.Fatalf("Only %d of %d simultaneously-due tasks fired", atomic.LoadInt64(&fired), tasks)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestManager_RemoveUnknownID(t *testing.T) {
	m := NewManager()
	defer m.Stop()
	m.Remove(12345)
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager()
	m.Stop()
	m.Stop()
}
