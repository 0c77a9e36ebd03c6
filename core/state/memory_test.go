package state

import (
	"sync"
	"testing"
)

func TestMemoryManagerStates(t *testing.T) {
	m := NewMemoryManager()

	if m.HasState(1) {
		t.Fatal("fresh manager should have no state")
	}
	m.SetState(1, "reg_name")
	if got := m.GetState(1); got != "reg_name" {
		t.Fatalf("GetState = %q, want reg_name", got)
	}
	if !m.HasState(1) {
		t.Fatal("HasState should be true after SetState")
	}
	if m.HasState(2) {
		t.Fatal("state must not leak between users")
	}

	m.Clear(1)
	if m.HasState(1) {
		t.Fatal("Clear must drop the session")
	}
}

func TestMemoryManagerTemp(t *testing.T) {
	m := NewMemoryManager()

	m.SetTemp(7, "course", "html")
	if v, ok := TempString(m, 7, "course"); !ok || v != "html" {
		t.Fatalf("TempString = %q/%v, want html/true", v, ok)
	}
	if _, ok := m.GetTemp(7, "name"); ok {
		t.Fatal("missing key must report false")
	}

	m.ClearTemp(7, "course")
	if _, ok := m.GetTemp(7, "course"); ok {
		t.Fatal("ClearTemp must remove the key")
	}

	m.SetTemp(7, "name", "Alice")
	m.Clear(7)
	if _, ok := m.GetTemp(7, "name"); ok {
		t.Fatal("Clear must wipe temp values")
	}
}

func TestMemoryManagerConcurrent(t *testing.T) {
	m := NewMemoryManager()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.SetState(id, "reg_course")
			m.SetTemp(id, "course", "js")
			_ = m.GetState(id)
			m.Clear(id)
		}(int64(i))
	}
	wg.Wait()
}
