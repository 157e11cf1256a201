package app

import (
	"log"
	"time"
)

// runLoop is the frame delivery loop. It pulls frames from the camera at
// the configured rate and hands them to the pipeline. The loop never waits
// on detection: admission control is the pipeline gate's job, and frames
// arriving while a detection is in flight are dropped there.
//
// Per-frame flow:
//  1. Read a frame from the camera (read errors skip the frame)
//  2. Optional motion gate: static scenes are not submitted
//  3. pipeline.Process: gate check, descriptor build, async detect
func (a *App) runLoop(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := time.Second / time.Duration(a.config.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			a.mu.Lock()
			camera := a.camera
			a.mu.Unlock()

			raw, err := camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			if a.config.MotionGate {
				if moved, _ := a.motion.Detect(raw); !moved {
					continue
				}
			}

			a.pipe.Process(*raw, camera.SensorOrientation())
		}
	}
}
