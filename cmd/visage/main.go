package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/ayusman/visage/internal/app"
	"github.com/ayusman/visage/internal/config"
	"github.com/ayusman/visage/internal/detector"
	"github.com/ayusman/visage/internal/server"
	"github.com/ayusman/visage/internal/store"
	"github.com/ayusman/visage/internal/tray"
)

func main() {
	fmt.Println("Visage - Real-Time Face Detection")

	cfg := config.Load()

	// Initialize the store
	dbPath := cfg.DBPath
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}

		dbDir := filepath.Join(homeDir, ".visage")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		dbPath = filepath.Join(dbDir, "visage.db")
	}

	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Build the application
	a := app.New(app.Config{
		Store:             st,
		CameraID:          cfg.CameraID,
		SensorOrientation: cfg.SensorOrientation,
		FPS:               cfg.FPS,
		CascadePath:       cfg.CascadePath,
		MotionThresh:      cfg.MotionThreshold,
		MotionGate:        cfg.MotionGate,
	})

	// A missing capture device is fatal at startup
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start frame stream: %v", err)
	}
	defer a.Stop()

	// Restore the persisted detection toggle
	restored := true
	if v, err := st.Settings().Get(store.SettingDetectionEnabled, "true"); err == nil {
		if enabled, err := strconv.ParseBool(v); err == nil {
			restored = enabled
			a.SetEnabled(enabled)
		}
	}

	// Configure and start the HTTP server
	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		fmt.Printf("Serving static files from: %s\n", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Pipeline:  a.Pipeline(),
		Camera:    a.Camera(),
	})

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wire the tray: it owns the main goroutine until quit
	tr := tray.New()
	tr.SetEnabled(restored)

	a.Pipeline().OnResult(func(_ []detector.FaceRegion) {
		tr.SetLastResult(a.State().Status())
	})

	tr.OnDashboard(func() {
		if err := openBrowser(dashboardURL(cfg.Addr)); err != nil {
			log.Printf("Failed to open dashboard: %v", err)
		}
	})

	tr.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
		if err := st.Settings().Set(store.SettingDetectionEnabled, strconv.FormatBool(enabled)); err != nil {
			log.Printf("Failed to persist detection toggle: %v", err)
		}
	})

	tr.OnQuit(func() {
		a.Stop()
	})

	tr.Run()
}

// dashboardURL builds the local dashboard URL from the listen address.
func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.visage/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".visage", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
