// Package config loads process-wide configuration from the environment,
// per the table of variables and defaults the engine is specified against.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/cortexgraph/memoryd/internal/search"
)

// Config is the resolved, process-wide configuration.
type Config struct {
	MemoryFilePath string
	LogLevel       string
	Search         search.Config
}

const (
	keyMemoryFilePath      = "memory_file_path"
	keySearchTopPerToken   = "search_top_per_token"
	keySearchMinRelative   = "search_min_relative_score"
	keySearchMaxPathLength = "search_max_path_length"
	keySearchMaxTotalNodes = "search_max_total_nodes"
	keyLogLevel            = "log_level"
)

// Load reads configuration from the environment, applying the documented
// defaults for anything unset. MEMORY_FILE_PATH defaults to
// "<cwd>/data/memory.jsonl".
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	defaultMemoryPath, err := defaultMemoryFilePath()
	if err != nil {
		return Config{}, err
	}

	v.SetDefault(keyMemoryFilePath, defaultMemoryPath)
	v.SetDefault(keySearchTopPerToken, 1)
	v.SetDefault(keySearchMinRelative, 0.3)
	v.SetDefault(keySearchMaxPathLength, 5)
	v.SetDefault(keySearchMaxTotalNodes, 50)
	v.SetDefault(keyLogLevel, "info")

	_ = v.BindEnv(keyMemoryFilePath, "MEMORY_FILE_PATH")
	_ = v.BindEnv(keySearchTopPerToken, "SEARCH_TOP_PER_TOKEN")
	_ = v.BindEnv(keySearchMinRelative, "SEARCH_MIN_RELATIVE_SCORE")
	_ = v.BindEnv(keySearchMaxPathLength, "SEARCH_MAX_PATH_LENGTH")
	_ = v.BindEnv(keySearchMaxTotalNodes, "SEARCH_MAX_TOTAL_NODES")
	_ = v.BindEnv(keyLogLevel, "LOG_LEVEL")

	return Config{
		MemoryFilePath: v.GetString(keyMemoryFilePath),
		LogLevel:       v.GetString(keyLogLevel),
		Search: search.Config{
			TopPerToken:      v.GetInt(keySearchTopPerToken),
			MinRelativeScore: v.GetFloat64(keySearchMinRelative),
			MaxPathLength:    v.GetInt(keySearchMaxPathLength),
			MaxTotalNodes:    v.GetInt(keySearchMaxTotalNodes),
		},
	}, nil
}

func defaultMemoryFilePath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, "data", "memory.jsonl"), nil
}
