package util

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// GetEnvDuration returns the duration held in env[key], or fallback when unset or unparsable
func GetEnvDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	if val := env[key]; val != "" {
		if parsed, err := time.ParseDuration(val); err == nil && parsed > 0 {
			return parsed
		}
	}

	return fallback
}

func GetEnvFloat(env map[string]string, key string, fallback float64) float64 {
	if val := env[key]; val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}

	return fallback
}

func GetEnvInt(env map[string]string, key string, fallback int) int {
	if val := env[key]; val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}

	return fallback
}

// GetEnvFloatList parses a comma separated list such as "1,1.5,2". Any bad entry
// makes the whole value fall back.
func GetEnvFloatList(env map[string]string, key string, fallback []float64) []float64 {
	val := env[key]
	if val == "" {
		return fallback
	}

	var list []float64
	for _, part := range strings.Split(val, ",") {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fallback
		}
		list = append(list, parsed)
	}

	return list
}
