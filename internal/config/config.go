// Package config loads application configuration from the environment,
// with optional .env file support.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds configuration options for the Visage application.
type Config struct {
	Addr              string
	DBPath            string
	StaticDir         string
	CameraID          int
	SensorOrientation int
	FPS               int
	CascadePath       string
	MotionThreshold   float64
	MotionGate        bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables take precedence over it.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Addr:              getEnv("ADDR", ":8080"),
		DBPath:            getEnv("DB_PATH", ""),
		StaticDir:         getEnv("STATIC_DIR", ""),
		CameraID:          getEnvAsInt("CAMERA_ID", 0),
		SensorOrientation: getEnvAsInt("SENSOR_ORIENTATION", 0),
		FPS:               getEnvAsInt("FPS", 15),
		CascadePath:       getEnv("CASCADE_PATH", "models/haarcascade_frontalface_default.xml"),
		MotionThreshold:   getEnvAsFloat("MOTION_THRESHOLD", 1.0),
		MotionGate:        getEnvAsBool("MOTION_GATE", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
