package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/vigsolve/internal/config"
	"github.com/verte-zerg/vigsolve/internal/genetic"
	"github.com/verte-zerg/vigsolve/internal/kasiski"
	"github.com/verte-zerg/vigsolve/internal/keylen"
	"github.com/verte-zerg/vigsolve/internal/recovery"
)

func applyAnalyzeConfig(cmd *cobra.Command, cfg config.AnalyzeConfig) {
	applyIntConfig(cmd, "min-ngram", &minNgram, cfg.MinNgram)
	applyIntConfig(cmd, "max-ngram", &maxNgram, cfg.MaxNgram)
	applyIntConfig(cmd, "candidates", &candidates, cfg.Candidates)
	applyBoolConfig(cmd, "letters-only", &lettersOnly, cfg.LettersOnly)
}

// kasiskiConfig builds the n-gram scan settings. An explicit shortest n-gram
// disables the short-text widening.
func kasiskiConfig(cmd *cobra.Command) kasiski.Config {
	cfg := kasiski.DefaultConfig()
	cfg.MinLen = minNgram
	cfg.MaxLen = maxNgram
	cfg.Limit = candidates
	if minNgram != defaultMinNgram || cmd.Flags().Changed("min-ngram") {
		cfg.ShortText = 0
	}
	return cfg
}

func validateKasiskiFlags() error {
	if minNgram < 2 {
		return fmt.Errorf("--min-ngram must be >= 2")
	}
	if maxNgram < minNgram {
		return fmt.Errorf("--max-ngram must be >= --min-ngram")
	}
	if candidates < 0 {
		return fmt.Errorf("--candidates must be >= 0")
	}
	return nil
}

func validateCrackFlags(cmd *cobra.Command) error {
	if err := validateKasiskiFlags(); err != nil {
		return err
	}
	if !cmd.Flags().Changed("key-length") {
		return validateFreqWeight()
	}
	if crackKeyLength < 1 {
		return fmt.Errorf("--key-length must be >= 1")
	}
	if crackKey != "" && crackKeyLength != len(crackKey) {
		return fmt.Errorf("--key-length %d does not match --key of length %d", crackKeyLength, len(crackKey))
	}
	return validateFreqWeight()
}

func validateFreqWeight() error {
	if crackFreqWeight < 0 {
		return fmt.Errorf("--freq-weight must be >= 0")
	}
	return nil
}

// keyLengthOverride is nil unless --key-length was given.
func keyLengthOverride(cmd *cobra.Command) *int {
	if !cmd.Flags().Changed("key-length") {
		return nil
	}
	n := crackKeyLength
	return &n
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringSliceConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if len(value) == 0 {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), value...)
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	defaults := genetic.DefaultParams()
	return fmt.Sprintf(`# vigsolve configuration
# Uncomment a value to enable it. CLI flags override config values.

[analyze]
# strategies = [%s]   # Key length strategies: %s
# freq-weight = %.2f        # Bonus per candidate recurrence for lengths > 3
# recovery = %q     # chi-squared, mutual-ic, or genetic
# min-ngram = %d            # Shortest repeated n-gram to mine
# max-ngram = %d            # Longest repeated n-gram to mine
# candidates = %d          # Candidate key lengths kept before scoring
# letters-only = false      # Drop non-letters before processing

[genetic]
# population = %d         # Keys per generation
# generations = %d        # Generation budget
# crossover = %.2f          # Crossover rate (0-1)
# mutation = %.2f           # Per-character mutation rate (0-1)
# elite = %d               # Elite size kept as parents
# patience = %d            # Generations without improvement before stopping
# seed = 0                  # Random seed (0 uses the clock)
# progress = true           # Show a progress bar on a terminal

[history]
# enabled = true            # Record attempts in the history database
# path = %q
`,
		quoteList(defaultStrategies),
		strings.Join(keylen.Names(), ", "),
		defaultFreqWeight,
		recovery.NameChiSquared,
		defaultMinNgram,
		defaultMaxNgram,
		defaultCandidates,
		defaults.Population,
		defaults.Generations,
		defaults.CrossoverRate,
		defaults.MutationRate,
		defaults.Elite,
		defaults.Patience,
		config.DefaultDBPath(),
	)
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
