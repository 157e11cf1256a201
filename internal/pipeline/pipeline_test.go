package pipeline

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ayusman/visage/internal/detector"
	"github.com/ayusman/visage/internal/frame"
	"github.com/ayusman/visage/testdata"
)

// blockingDetector holds Detect open until released, so tests can observe
// the pipeline mid-detection deterministically.
type blockingDetector struct {
	entered chan struct{}
	release chan struct{}
	faces   []detector.FaceRegion
	calls   int32
}

func newBlockingDetector(faces []detector.FaceRegion) *blockingDetector {
	return &blockingDetector{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
		faces:   faces,
	}
}

func (d *blockingDetector) Detect(desc *frame.ImageDescriptor) ([]detector.FaceRegion, error) {
	atomic.AddInt32(&d.calls, 1)
	d.entered <- struct{}{}
	<-d.release
	return d.faces, nil
}

func (d *blockingDetector) Close() error { return nil }

func waitEntered(t *testing.T, d *blockingDetector) {
	t.Helper()
	select {
	case <-d.entered:
	case <-time.After(time.Second):
		t.Fatal("detector was never invoked")
	}
}

func TestPipeline_Process(t *testing.T) {
	t.Run("admitted frame publishes result and releases gate", func(t *testing.T) {
		mock := detector.NewMockDetector()
		mock.SetFaces(detector.TwoFaces())
		p := New(mock)

		var published []detector.FaceRegion
		var mu sync.Mutex
		p.OnResult(func(faces []detector.FaceRegion) {
			mu.Lock()
			published = faces
			mu.Unlock()
		})

		if !p.Process(testdata.NV21Frame(64, 48), 90) {
			t.Fatal("expected frame to be admitted")
		}
		p.Wait()

		if got := p.State().Status(); got != "Faces Detected: 2" {
			t.Errorf("status = %q, want %q", got, "Faces Detected: 2")
		}
		if p.Gate().Busy() {
			t.Error("gate must be released after publish")
		}
		mu.Lock()
		defer mu.Unlock()
		if len(published) != 2 {
			t.Errorf("result sink got %d faces, want 2", len(published))
		}
	})

	t.Run("frame arriving while busy is dropped untouched", func(t *testing.T) {
		d := newBlockingDetector(detector.TwoFaces())
		p := New(d)

		if !p.Process(testdata.NV21Frame(64, 48), 0) {
			t.Fatal("expected first frame to be admitted")
		}
		waitEntered(t, d)

		if p.Process(testdata.NV21Frame(64, 48), 0) {
			t.Error("expected second frame to be dropped while busy")
		}
		if got := atomic.LoadInt32(&d.calls); got != 1 {
			t.Errorf("detector invoked %d times, want 1", got)
		}
		if got := p.State().Status(); got != StatusNoFaces {
			t.Errorf("dropped frame must not alter state, status = %q", got)
		}

		close(d.release)
		p.Wait()

		if p.Gate().Busy() {
			t.Error("gate must be released after detection completes")
		}
	})

	t.Run("disabled pipeline rejects frames idempotently", func(t *testing.T) {
		mock := detector.NewMockDetector()
		mock.SetFaces(detector.TwoFaces())
		p := New(mock)
		p.SetEnabled(false)

		for _, raw := range testdata.FrameSequence(5, 64, 48) {
			if p.Process(raw, 0) {
				t.Fatal("expected rejection while disabled")
			}
		}

		if mock.Calls() != 0 {
			t.Errorf("detector invoked %d times, want 0", mock.Calls())
		}
		if got := p.State().Status(); got != StatusNoFaces {
			t.Errorf("rejected frames must not alter state, status = %q", got)
		}
	})

	t.Run("unsupported format releases gate without detector call", func(t *testing.T) {
		mock := detector.NewMockDetector()
		p := New(mock)

		if p.Process(testdata.BadFormatFrame(64, 48), 0) {
			t.Error("expected frame with unknown format to be dropped")
		}
		if mock.Calls() != 0 {
			t.Errorf("detector invoked %d times, want 0", mock.Calls())
		}
		if p.Gate().Busy() {
			t.Error("gate must be released after build failure")
		}
		if !p.Process(testdata.NV21Frame(64, 48), 0) {
			t.Error("expected next frame to be admitted after build failure")
		}
		p.Wait()
	})

	t.Run("empty frame releases gate", func(t *testing.T) {
		mock := detector.NewMockDetector()
		p := New(mock)

		raw := frame.RawFrame{Width: 64, Height: 48, FormatCode: testdata.FormatCodeNV21}
		if p.Process(raw, 0) {
			t.Error("expected frame with zero planes to be dropped")
		}
		if p.Gate().Busy() {
			t.Error("gate must be released after build failure")
		}
	})

	t.Run("detector failure publishes empty result", func(t *testing.T) {
		mock := detector.NewMockDetector()
		mock.SetFaces(detector.TwoFaces())
		p := New(mock)

		p.Process(testdata.NV21Frame(64, 48), 0)
		p.Wait()

		mock.SetError(errors.New("model crashed"))
		if !p.Process(testdata.NV21Frame(64, 48), 0) {
			t.Fatal("expected frame to be admitted")
		}
		p.Wait()

		if got := p.State().Status(); got != StatusNoFaces {
			t.Errorf("status = %q, want %q", got, StatusNoFaces)
		}
		if len(p.State().Faces()) != 0 {
			t.Error("failed detection must publish an empty result")
		}
		if p.Gate().Busy() {
			t.Error("gate must be released after detector failure")
		}
	})

	t.Run("disable mid-detection still publishes in-flight result", func(t *testing.T) {
		d := newBlockingDetector(detector.TwoFaces())
		p := New(d)

		p.Process(testdata.NV21Frame(64, 48), 0)
		waitEntered(t, d)

		p.SetEnabled(false)
		close(d.release)
		p.Wait()

		if got := p.State().Status(); got != "Faces Detected: 2" {
			t.Errorf("in-flight detection must publish, status = %q", got)
		}
		if p.Process(testdata.NV21Frame(64, 48), 0) {
			t.Error("expected rejection after disable")
		}

		p.SetEnabled(true)
		if !p.Process(testdata.NV21Frame(64, 48), 0) {
			t.Error("expected admission immediately after re-enable")
		}
		p.Wait()
	})
}

// countingDetector tracks how many Detect calls overlap in time.
type countingDetector struct {
	current int32
	max     int32
}

func (d *countingDetector) Detect(desc *frame.ImageDescriptor) ([]detector.FaceRegion, error) {
	n := atomic.AddInt32(&d.current, 1)
	for {
		prev := atomic.LoadInt32(&d.max)
		if n <= prev || atomic.CompareAndSwapInt32(&d.max, prev, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt32(&d.current, -1)
	return nil, nil
}

func (d *countingDetector) Close() error { return nil }

func TestPipeline_SingleFlight(t *testing.T) {
	d := &countingDetector{}
	p := New(d)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p.Process(testdata.NV21Frame(32, 24), 0)
			}
		}()
	}
	wg.Wait()
	p.Wait()

	if peak := atomic.LoadInt32(&d.max); peak > 1 {
		t.Errorf("observed %d concurrent detections, want at most 1", peak)
	}
}
