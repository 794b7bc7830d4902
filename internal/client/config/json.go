package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mkraev/atelier/internal/flagx"
	"github.com/mkraev/atelier/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "1500ms" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerURL     string         `json:"server_url"`
	ERPHost       string         `json:"erp_host"`
	ERPDatabase   string         `json:"erp_database"`
	BatchSize     int            `json:"batch_size"`
	ConflictDelay timex.Duration `json:"conflict_delay"`
}

// parseJson overlays Config with values loaded from a JSON file selected by
// the -c or -config flags. When neither flag is set no JSON is loaded.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, &jc); err != nil {
		panic(err)
	}

	cfg.ServerURL = jc.ServerURL
	cfg.ERPHost = jc.ERPHost
	cfg.ERPDatabase = jc.ERPDatabase
	cfg.BatchSize = jc.BatchSize
	cfg.ConflictDelay = time.Duration(jc.ConflictDelay.Duration)
}
