package tray

import "testing"

func TestTray_SetEnabled(t *testing.T) {
	tr := New()

	if !tr.IsEnabled() {
		t.Fatal("new tray should default to enabled")
	}

	tr.SetEnabled(false)
	if tr.IsEnabled() {
		t.Error("tray still enabled after SetEnabled(false)")
	}

	tr.SetEnabled(true)
	if !tr.IsEnabled() {
		t.Error("tray still disabled after SetEnabled(true)")
	}
}

func TestTray_ToggleFollowsRestoredState(t *testing.T) {
	tr := New()

	var got []bool
	tr.OnToggle(func(enabled bool) {
		got = append(got, enabled)
	})

	// A persisted "off" restored at startup must make the next click
	// toggle back to on.
	tr.SetEnabled(false)
	tr.handleToggle()

	if len(got) != 1 || !got[0] {
		t.Errorf("toggle callback got %v, want [true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("tray should be enabled after toggling from off")
	}
}

func TestTray_DashboardCallback(t *testing.T) {
	tr := New()

	called := false
	tr.OnDashboard(func() { called = true })
	tr.handleDashboard()

	if !called {
		t.Error("dashboard callback was not invoked")
	}
}

func TestTray_SetLastResultBeforeReady(t *testing.T) {
	tr := New()

	// Menu items do not exist until the tray is running; updates before
	// then must be no-ops, not panics.
	tr.SetLastResult("Faces Detected: 1")
	tr.SetEnabled(false)
}
