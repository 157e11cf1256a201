// Package app provides the main application logic for the Visage face detection system.
package app

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/ayusman/visage/internal/capture"
	"github.com/ayusman/visage/internal/detector"
	"github.com/ayusman/visage/internal/pipeline"
	"github.com/ayusman/visage/internal/store"
)

// Stream timing constants.
const (
	// DefaultStreamFPS is the frame delivery rate when none is configured.
	DefaultStreamFPS = 15
)

// Config holds configuration options for the application.
type Config struct {
	Store             *store.Store
	CameraID          int
	SensorOrientation int
	FPS               int
	CascadePath       string
	MotionThresh      float64
	MotionGate        bool
}

// App orchestrates the frame stream: it pulls frames from the camera and
// feeds them to the detection pipeline, recording published results.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	pipe     *pipeline.Pipeline
	mu       sync.Mutex
	stopCh   chan struct{}
	done     chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.FPS <= 0 {
		config.FPS = DefaultStreamFPS
	}
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	a := &App{
		config: config,
		camera: capture.NewCamera(config.CameraID, config.SensorOrientation),
		motion: capture.NewMotionDetector(motionThreshold),
	}

	// Try the cascade model first, fall back to mock detector
	detCfg := detector.DefaultConfig()
	if config.CascadePath != "" {
		detCfg.CascadePath = config.CascadePath
	}
	if cd, err := detector.NewCascadeDetector(detCfg); err == nil {
		a.detector = cd
		log.Println("Using Haar cascade face detection")
	} else {
		log.Printf("Cascade model not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	a.pipe = pipeline.New(a.detector)
	a.pipe.SetEnabled(false)

	if config.Store != nil {
		a.pipe.OnResult(a.recordResult)
	}

	return a
}

// recordResult persists a published detection result as an event.
func (a *App) recordResult(faces []detector.FaceRegion) {
	event := &store.Event{
		ID:        uuid.NewString(),
		FaceCount: len(faces),
		Status:    a.pipe.State().Status(),
		Faces:     faces,
	}
	if err := a.config.Store.Events().Create(event); err != nil {
		log.Printf("Failed to record detection event: %v", err)
	}
}

// SetEnabled enables or disables face detection admission.
func (a *App) SetEnabled(enabled bool) {
	a.pipe.SetEnabled(enabled)
}

// IsEnabled returns whether face detection is currently enabled.
func (a *App) IsEnabled() bool {
	return a.pipe.Enabled()
}

// SetDetector sets the face detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	a.detector = d
	a.mu.Unlock()
	a.pipe.SetDetector(d)
}

// SetCamera replaces the camera implementation. Only valid before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Start opens the capture device and begins delivering frames to the
// pipeline. A missing device surfaces here as the Open error.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.camera.SetFPS(a.config.FPS)
	a.pipe.SetEnabled(true)

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runLoop(a.stopCh, a.done)

	log.Println("Frame stream started")
	return nil
}

// Stop halts frame delivery, waits for any in-flight detection to publish,
// and releases the capture device and the detector.
func (a *App) Stop() {
	// The loop locks a.mu every tick, so the wait for it to drain must
	// happen with the mutex released.
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh = nil
	a.done = nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	// In-flight detection must drain before the detector is torn down.
	a.pipe.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Frame stream stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Pipeline returns the detection pipeline.
func (a *App) Pipeline() *pipeline.Pipeline {
	return a.pipe
}

// State returns the pipeline's shared result state.
func (a *App) State() *pipeline.State {
	return a.pipe.State()
}

// Detector returns the face detector.
func (a *App) Detector() detector.Detector {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.detector
}
