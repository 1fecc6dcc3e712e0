package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Feature names the generation flow consults before including an
// equipment kind's sheets and document sections.
const (
	FeatureUVC       = "uvc"
	FeatureSDU       = "sdu"
	FeatureRecoAir   = "recoair"
	FeatureReactaway = "reactaway"
)

// defaults for features without an environment override. All equipment
// kinds ship enabled; flags exist to switch a kind off for a deployment
// that does not sell it.
var featureDefaults = map[string]bool{
	FeatureUVC:       true,
	FeatureSDU:       true,
	FeatureRecoAir:   true,
	FeatureReactaway: false,
}

// Load reads an optional .env file into the process environment. A
// missing file is fine; deployments may configure the environment
// directly.
func Load() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: could not load .env: %v", err)
		}
	}
}

// IsEnabled reports whether a feature is switched on. The lookup is
// read-only during a generation pass: FEATURE_UVC=false disables UV-C,
// unset falls back to the built-in default.
func IsEnabled(name string) bool {
	key := "FEATURE_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if raw, ok := os.LookupEnv(key); ok {
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err == nil {
			return v
		}
		log.Printf("Warning: invalid value %q for %s, using default", raw, key)
	}
	return featureDefaults[name]
}

// DataDir returns the directory PocketBase stores its data in.
func DataDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}
	return "pb_data"
}
