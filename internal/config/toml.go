// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analyze AnalyzeConfig `toml:"analyze"`
	Genetic GeneticConfig `toml:"genetic"`
	History HistoryConfig `toml:"history"`
}

// AnalyzeConfig maps key length estimation and recovery settings.
type AnalyzeConfig struct {
	Strategies  []string `toml:"strategies" validate:"omitempty,dive,oneof=autocorrelation ic friedman gcd"`
	FreqWeight  *float64 `toml:"freq-weight" validate:"omitempty,gte=0"`
	Recovery    *string  `toml:"recovery" validate:"omitempty,oneof=chi-squared mutual-ic genetic"`
	MinNgram    *int     `toml:"min-ngram" validate:"omitempty,gte=2"`
	MaxNgram    *int     `toml:"max-ngram" validate:"omitempty,gte=2"`
	Candidates  *int     `toml:"candidates" validate:"omitempty,gte=0"`
	LettersOnly *bool    `toml:"letters-only"`
}

// GeneticConfig maps genetic search parameters.
type GeneticConfig struct {
	Population  *int     `toml:"population" validate:"omitempty,gte=2"`
	Generations *int     `toml:"generations" validate:"omitempty,gte=1"`
	Crossover   *float64 `toml:"crossover" validate:"omitempty,gte=0,lte=1"`
	Mutation    *float64 `toml:"mutation" validate:"omitempty,gte=0,lte=1"`
	Elite       *int     `toml:"elite" validate:"omitempty,gte=1"`
	Patience    *int     `toml:"patience" validate:"omitempty,gte=0"`
	Seed        *int64   `toml:"seed"`
	Progress    *bool    `toml:"progress"`
}

// HistoryConfig maps attempt history settings.
type HistoryConfig struct {
	Enabled *bool   `toml:"enabled"`
	Path    *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := validate.Struct(cfg); err != nil {
		return FileConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
