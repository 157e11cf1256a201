package app

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/visage/internal/capture"
	"github.com/ayusman/visage/internal/detector"
	"github.com/ayusman/visage/internal/store"
	"github.com/ayusman/visage/testdata"
)

func newTestApp(t *testing.T, st *store.Store) (*App, *capture.MockCamera, *detector.MockDetector) {
	t.Helper()

	a := New(Config{
		Store: st,
		FPS:   100, // fast frame delivery for tests
	})

	cam := capture.NewMockCamera(testdata.FrameSequence(4, 64, 48), true)
	a.SetCamera(cam)

	mock := detector.NewMockDetector()
	a.SetDetector(mock)

	return a, cam, mock
}

func waitForStatus(t *testing.T, a *App, want string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a.State().Status() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("status never became %q, last was %q", want, a.State().Status())
}

func TestApp_DetectionPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, _, mock := newTestApp(t, nil)
	mock.SetFaces(detector.TwoFaces())

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	waitForStatus(t, a, "Faces Detected: 2")

	faces := a.State().Faces()
	if len(faces) != 2 {
		t.Errorf("got %d faces, want 2", len(faces))
	}
}

func TestApp_DisabledRejectsFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, _, mock := newTestApp(t, nil)
	mock.SetFaces(detector.TwoFaces())

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	a.SetEnabled(false)
	a.Pipeline().Wait()
	calls := mock.Calls()

	// Frames keep flowing but none should reach the detector.
	time.Sleep(200 * time.Millisecond)

	if got := mock.Calls(); got > calls {
		t.Errorf("detector invoked %d times while disabled, want %d", got, calls)
	}
}

func TestApp_StartFailsWithoutDevice(t *testing.T) {
	a, cam, _ := newTestApp(t, nil)

	wantErr := errors.New("no capture device found")
	cam.SetOpenError(wantErr)

	if err := a.Start(); !errors.Is(err, wantErr) {
		t.Errorf("Start() error = %v, want %v", err, wantErr)
	}
	if a.IsEnabled() {
		t.Error("detection must not be enabled after failed start")
	}
}

func TestApp_RecordsEventsToStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	a, _, mock := newTestApp(t, st)
	mock.SetFaces(detector.TwoFaces())

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	waitForStatus(t, a, "Faces Detected: 2")
	a.Stop()

	events, err := st.Events().List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected at least one recorded event")
	}
	if events[0].FaceCount != 2 {
		t.Errorf("recorded face count = %d, want 2", events[0].FaceCount)
	}
}

func TestApp_StartStopCycles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a := New(Config{FPS: 500})
	a.SetCamera(capture.NewMockCamera(testdata.FrameSequence(4, 64, 48), true))
	a.SetDetector(detector.NewMockDetector())

	for i := 0; i < 100; i++ {
		if err := a.Start(); err != nil {
			t.Fatalf("Start() error on iteration %d: %v", i, err)
		}

		// Let the loop reach its ticker branch before stopping.
		time.Sleep(3 * time.Millisecond)

		stopped := make(chan struct{})
		go func() {
			a.Stop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			t.Fatalf("Stop() did not return on iteration %d", i)
		}
	}
}

func TestApp_StopWaitsForInflightDetection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, _, mock := newTestApp(t, nil)
	mock.SetFaces(detector.TwoFaces())
	mock.SetDelay(100 * time.Millisecond)

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Let at least one frame be admitted before stopping.
	deadline := time.Now().Add(2 * time.Second)
	for mock.Calls() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if mock.Calls() == 0 {
		t.Fatal("detector was never invoked")
	}

	a.Stop()

	if a.Pipeline().Gate().Busy() {
		t.Error("gate still busy after Stop")
	}
	if !mock.Closed() {
		t.Error("detector not closed after Stop")
	}
}
