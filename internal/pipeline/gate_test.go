package pipeline

import "testing"

func TestGate_TryEnter(t *testing.T) {
	t.Run("admits when free and enabled", func(t *testing.T) {
		g := NewGate(true)

		if !g.TryEnter() {
			t.Fatal("expected admission on free gate")
		}
		if !g.Busy() {
			t.Error("expected gate to be busy after admission")
		}
	})

	t.Run("rejects while busy", func(t *testing.T) {
		g := NewGate(true)
		g.TryEnter()

		if g.TryEnter() {
			t.Error("expected rejection while busy")
		}
	})

	t.Run("rejects while disabled without state change", func(t *testing.T) {
		g := NewGate(false)

		if g.TryEnter() {
			t.Error("expected rejection while disabled")
		}
		if g.Busy() {
			t.Error("rejected admission must not mark gate busy")
		}
	})

	t.Run("exit re-arms admission", func(t *testing.T) {
		g := NewGate(true)
		g.TryEnter()
		g.Exit()

		if g.Busy() {
			t.Error("expected gate free after exit")
		}
		if !g.TryEnter() {
			t.Error("expected admission after exit")
		}
	})

	t.Run("exit is unconditional", func(t *testing.T) {
		g := NewGate(true)
		g.Exit() // never entered
		if g.Busy() {
			t.Error("expected gate free")
		}
	})
}

func TestGate_SetEnabled(t *testing.T) {
	t.Run("disabling does not clear busy", func(t *testing.T) {
		g := NewGate(true)
		g.TryEnter()
		g.SetEnabled(false)

		if !g.Busy() {
			t.Error("disable must not release an in-flight admission")
		}
	})

	t.Run("re-enabling re-arms admission immediately", func(t *testing.T) {
		g := NewGate(true)
		g.SetEnabled(false)
		g.SetEnabled(true)

		if !g.TryEnter() {
			t.Error("expected admission after re-enable")
		}
	})
}
