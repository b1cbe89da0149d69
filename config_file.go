// config_file.go: benchmark configuration files
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfigFile reads a YAML (or JSON) file and overlays its benchmark
// section on base. Keys that are missing or out of range keep the value
// from base. The result is not validated.
//
// Example configuration file:
//
//	benchmark:
//	  strategy: invalidated-grace-period-read
//	  workers: 4
//	  operations: 4000
//	  key_space: 128
//	  trials: 5
//	  read_delay: "10us"
//	  join: poll
//	  thresholds:
//	    insert: 12
//	    remove: 25
//	    read: 255
//	    reject: 255
func LoadConfigFile(path string, base Config) (Config, error) {
	raw, err := os.ReadFile(path) // #nosec G304 - path is operator supplied
	if err != nil {
		return base, NewErrConfigLoadFailed(path, err)
	}
	var data map[string]interface{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return base, NewErrConfigLoadFailed(path, err)
	}
	return parseConfig(data, base)
}

// parseConfig extracts benchmark settings from decoded configuration data.
// The section may be nested under "benchmark" or be the whole document.
func parseConfig(data map[string]interface{}, base Config) (Config, error) {
	config := base

	section, ok := data["benchmark"].(map[string]interface{})
	if !ok {
		section = data
	}

	if name, ok := section["strategy"].(string); ok {
		kind, err := ParseStrategy(name)
		if err != nil {
			return base, err
		}
		config.Strategy = kind
	}
	if name, ok := section["join"].(string); ok {
		join, err := ParseJoinMode(name)
		if err != nil {
			return base, err
		}
		config.Join = join
	}

	if v, ok := parsePositiveInt(section["workers"]); ok {
		config.Workers = v
	}
	if v, ok := parsePositiveInt(section["operations"]); ok {
		config.Operations = v
	}
	if v, ok := parsePositiveInt(section["key_space"]); ok {
		config.KeySpace = v
	}
	if v, ok := parsePositiveInt(section["trials"]); ok {
		config.Trials = v
	}
	if v, ok := parsePositiveInt(section["stall_polls"]); ok {
		config.StallPolls = v
	}
	if v, ok := parseIntInRange(section["max_entries"], 0, 1<<31-1); ok {
		config.MaxEntries = v
	}

	if d, ok := parseDuration(section["read_delay"]); ok {
		config.ReadDelay = d
	}
	if d, ok := parseDuration(section["poll_interval"]); ok {
		config.PollInterval = d
	}
	if d, ok := parseDuration(section["reclaim_interval"]); ok {
		config.ReclaimInterval = d
	}

	if s, ok := section["seed_payload"].(string); ok && s != "" {
		config.SeedPayload = s
	}
	if s, ok := section["insert_payload"].(string); ok && s != "" {
		config.InsertPayload = s
	}

	if th, ok := section["thresholds"].(map[string]interface{}); ok {
		t := config.Thresholds
		if t.isZero() {
			t = DefaultThresholds
		}
		if v, ok := parseIntInRange(th["insert"], 0, 255); ok {
			t.Insert = uint8(v) // #nosec G115 - range checked
		}
		if v, ok := parseIntInRange(th["remove"], 0, 255); ok {
			t.Remove = uint8(v) // #nosec G115 - range checked
		}
		if v, ok := parseIntInRange(th["read"], 0, 255); ok {
			t.Read = uint8(v) // #nosec G115 - range checked
		}
		if v, ok := parseIntInRange(th["reject"], 0, 255); ok {
			t.Reject = uint8(v) // #nosec G115 - range checked
		}
		if err := t.validate(); err != nil {
			return base, err
		}
		config.Thresholds = t
	}

	return config, nil
}

// parsePositiveInt extracts a positive integer from interface{} value.
// Supports both int and float64 types (YAML/JSON may vary).
func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

// parseIntInRange extracts an integer within the specified range [min, max].
// Supports both int and float64 types.
func parseIntInRange(value interface{}, min, max int) (int, bool) {
	switch v := value.(type) {
	case int:
		if v >= min && v <= max {
			return v, true
		}
	case float64:
		if v >= float64(min) && v <= float64(max) {
			return int(v), true
		}
	}
	return 0, false
}

// parseDuration extracts a non-negative time.Duration from a string value.
func parseDuration(value interface{}) (time.Duration, bool) {
	if str, ok := value.(string); ok {
		if d, err := time.ParseDuration(str); err == nil && d >= 0 {
			return d, true
		}
	}
	return 0, false
}
