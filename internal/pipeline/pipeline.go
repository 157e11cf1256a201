// Package pipeline orchestrates frame admission, descriptor construction,
// detector invocation and result publishing.
package pipeline

import (
	"log"
	"sync"

	"github.com/ayusman/visage/internal/detector"
	"github.com/ayusman/visage/internal/frame"
)

// ResultFunc receives every published detection result.
type ResultFunc func(faces []detector.FaceRegion)

// Pipeline feeds admitted frames to a detector, one at a time, and publishes
// results to its State. Frame delivery never blocks on detection: the
// detector call runs on its own goroutine and the gate drops frames that
// arrive while it is in flight.
type Pipeline struct {
	gate     *Gate
	state    *State
	detector detector.Detector

	mu       sync.Mutex
	onResult []ResultFunc
	inflight sync.WaitGroup
}

// New creates a Pipeline around the given detector, with admission enabled.
func New(d detector.Detector) *Pipeline {
	return &Pipeline{
		gate:     NewGate(true),
		state:    NewState(),
		detector: d,
	}
}

// Gate returns the pipeline's admission gate.
func (p *Pipeline) Gate() *Gate {
	return p.gate
}

// State returns the pipeline's shared result state.
func (p *Pipeline) State() *State {
	return p.state
}

// OnResult registers a sink invoked after every publish, in detection order.
// Sinks run on the detection goroutine and should not block.
func (p *Pipeline) OnResult(fn ResultFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onResult = append(p.onResult, fn)
}

// SetDetector replaces the detector implementation. It does not affect an
// in-flight detection, which keeps using the detector it started with.
func (p *Pipeline) SetDetector(d detector.Detector) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detector = d
}

// Process runs one frame through the pipeline. It returns true when the
// frame was admitted, false when it was dropped (gate busy or disabled) or
// its descriptor could not be built. Per-frame errors are contained here;
// they never propagate to the caller.
func (p *Pipeline) Process(raw frame.RawFrame, sensorOrientation int) bool {
	if !p.gate.TryEnter() {
		return false
	}

	desc, err := frame.Build(raw, sensorOrientation)
	if err != nil {
		p.gate.Exit()
		log.Printf("skipping frame: %v", err)
		return false
	}

	p.mu.Lock()
	d := p.detector
	p.mu.Unlock()

	p.inflight.Add(1)
	go p.detect(d, desc)
	return true
}

// detect invokes the detector and publishes the outcome. A detector failure
// publishes an empty result; the gate is released on every path.
func (p *Pipeline) detect(d detector.Detector, desc *frame.ImageDescriptor) {
	defer p.inflight.Done()
	defer p.gate.Exit()

	faces, err := d.Detect(desc)
	if err != nil {
		log.Printf("detector error: %v", err)
		faces = nil
	}

	p.state.Publish(faces)

	p.mu.Lock()
	sinks := make([]ResultFunc, len(p.onResult))
	copy(sinks, p.onResult)
	p.mu.Unlock()
	for _, fn := range sinks {
		fn(faces)
	}
}

// SetEnabled toggles frame admission. An in-flight detection still completes
// and publishes; only subsequent admissions are affected.
func (p *Pipeline) SetEnabled(enabled bool) {
	p.gate.SetEnabled(enabled)
}

// Enabled reports whether the pipeline admits frames.
func (p *Pipeline) Enabled() bool {
	return p.gate.Enabled()
}

// Wait blocks until any in-flight detection has published. Called before
// tearing down the detector so a result never races a closed detector.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}
