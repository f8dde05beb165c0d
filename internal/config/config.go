package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// MarkerMode selects how [SIM_VIDEO_*] markers are delivered to the caller.
type MarkerMode string

const (
	// MarkerPassthrough keeps normalized markers in the text for the frontend to render.
	MarkerPassthrough MarkerMode = "passthrough"
	// MarkerInline expands markers into "see video" blocks with local paths.
	MarkerInline MarkerMode = "inline"
)

// Equipment is one knowledge-base binding loaded from the environment.
// Empty AssistantID or VectorStoreID means the equipment is not configured
// for the AI path and only offline answers are available.
type Equipment struct {
	Nome          string
	AssistantID   string
	VectorStoreID string
}

type Config struct {
	Port    string
	DataDir string
	DBPath  string

	AdminPassword string

	OpenAIAPIKey string
	GoogleAPIKey string

	VideoMarkerMode MarkerMode

	// Reference point for distance annotation (Storopack São Paulo plant).
	ReferenceLat float64
	ReferenceLng float64

	Equipamentos map[string]Equipment
}

// Load builds the immutable configuration snapshot. It is called once at
// startup; the result is passed by reference and never mutated afterwards.
func Load() (*Config, error) {
	// .env is optional — env vars may already be set (e.g. in production)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DataDir:       getEnv("DATA_DIR", "data"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "826541"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		ReferenceLat:  parseFloatEnv("REFERENCE_LAT", -23.67376),
		ReferenceLng:  parseFloatEnv("REFERENCE_LNG", -46.69436),
	}
	cfg.DBPath = getEnv("DB_PATH", cfg.DataDir+"/storopack.db")

	switch mode := MarkerMode(getEnv("VIDEO_MARKER_MODE", string(MarkerPassthrough))); mode {
	case MarkerPassthrough, MarkerInline:
		cfg.VideoMarkerMode = mode
	default:
		return nil, fmt.Errorf("invalid VIDEO_MARKER_MODE %q (want passthrough or inline)", mode)
	}

	cfg.Equipamentos = map[string]Equipment{
		"airplus": {
			Nome:          "AIRplus Mini",
			AssistantID:   os.Getenv("ASSISTANT_AIRPLUS_MINI"),
			VectorStoreID: os.Getenv("VECTOR_AIRPLUS_MINI"),
		},
		"airmove_2": {
			Nome:          "AIRmove 2",
			AssistantID:   os.Getenv("ASSISTANT_AIRMOVE_2"),
			VectorStoreID: os.Getenv("VECTOR_AIRMOVE_2"),
		},
		"foamplus": {
			Nome:          "FOAMplus Bag Packer",
			AssistantID:   os.Getenv("ASSISTANT_FOAMPLUS_BAG"),
			VectorStoreID: os.Getenv("VECTOR_FOAMPLUS_BAG"),
		},
		"paperplus_classic": {
			Nome:          "PAPERplus Classic",
			AssistantID:   os.Getenv("ASSISTANT_PAPERPLUS_CLASSIC"),
			VectorStoreID: os.Getenv("VECTOR_PAPERPLUS_CLASSIC"),
		},
		"paperplus_track": {
			Nome:          "PAPERplus Track",
			AssistantID:   os.Getenv("ASSISTANT_PAPERPLUS_TRACK"),
			VectorStoreID: os.Getenv("VECTOR_PAPERPLUS_TRACK"),
		},
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseFloatEnv(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}
