// Package main provides the CLI entrypoint for vigsolve.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/vigsolve/internal/cipher"
	"github.com/verte-zerg/vigsolve/internal/config"
	"github.com/verte-zerg/vigsolve/internal/engine"
	"github.com/verte-zerg/vigsolve/internal/genetic"
	"github.com/verte-zerg/vigsolve/internal/input"
	"github.com/verte-zerg/vigsolve/internal/keylen"
	"github.com/verte-zerg/vigsolve/internal/model"
	"github.com/verte-zerg/vigsolve/internal/progressui"
	"github.com/verte-zerg/vigsolve/internal/recovery"
	"github.com/verte-zerg/vigsolve/internal/report"
	"github.com/verte-zerg/vigsolve/internal/store"
)

const (
	defaultFreqWeight  = 0.01
	defaultMinNgram    = 3
	defaultMaxNgram    = 5
	defaultCandidates  = 20
	defaultHistoryLast = 20
)

var defaultStrategies = []string{keylen.NameAutocorrelation, keylen.NameIndexOfCoincidence}

var (
	inputText   string
	lettersOnly bool
	minNgram    int
	maxNgram    int
	candidates  int

	crackKey        string
	crackKeyLength  int
	crackStrategies []string
	crackFreqWeight float64
	crackRecovery   string
	crackProgress   bool
	noHistory       bool
	verbose         bool

	gaPopulation  int
	gaGenerations int
	gaCrossover   float64
	gaMutation    float64
	gaElite       int
	gaPatience    int
	gaSeed        int64

	cipherKey   string
	historyLast int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vigsolve [file]",
		Short:         "Break Vigenère ciphertext with statistical cryptanalysis",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runCrackCmd,
	}

	bindInputFlags(rootCmd)
	bindKasiskiFlags(rootCmd)
	defaults := genetic.DefaultParams()
	flags := rootCmd.Flags()
	flags.StringVar(&crackKey, "key", "", "decrypt with this key instead of recovering one")
	flags.IntVar(&crackKeyLength, "key-length", 0, "skip estimation and use this key length")
	flags.StringSliceVar(&crackStrategies, "strategy", defaultStrategies, "key length strategies: "+strings.Join(keylen.Names(), ", "))
	flags.Float64Var(&crackFreqWeight, "freq-weight", defaultFreqWeight, "bonus per candidate recurrence for lengths > 3")
	flags.StringVar(&crackRecovery, "recovery", recovery.NameChiSquared, "key recovery: chi-squared, mutual-ic, genetic")
	flags.IntVar(&gaPopulation, "population", defaults.Population, "genetic population size")
	flags.IntVar(&gaGenerations, "generations", defaults.Generations, "genetic generation budget")
	flags.Float64Var(&gaCrossover, "crossover", defaults.CrossoverRate, "genetic crossover rate (0-1)")
	flags.Float64Var(&gaMutation, "mutation", defaults.MutationRate, "genetic per-character mutation rate (0-1)")
	flags.IntVar(&gaElite, "elite", defaults.Elite, "genetic elite size kept as parents")
	flags.IntVar(&gaPatience, "patience", defaults.Patience, "stop after this many generations without improvement (0 disables)")
	flags.Int64Var(&gaSeed, "seed", 0, "genetic random seed (0 uses the clock)")
	flags.BoolVar(&crackProgress, "progress", true, "show genetic search progress on a terminal")
	flags.BoolVar(&noHistory, "no-history", false, "do not record the attempt")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log diagnostics and show candidate scores")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newCipherCmd("encrypt", "Encrypt text with a key", cipher.Encrypt))
	rootCmd.AddCommand(newCipherCmd("decrypt", "Decrypt text with a known key", cipher.Decrypt))
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func bindInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&inputText, "text", "", "ciphertext given inline instead of a file or stdin")
	cmd.Flags().BoolVar(&lettersOnly, "letters-only", false, "drop every non-letter before processing")
}

func bindKasiskiFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&minNgram, "min-ngram", defaultMinNgram, "shortest repeated n-gram to mine")
	cmd.Flags().IntVar(&maxNgram, "max-ngram", defaultMaxNgram, "longest repeated n-gram to mine")
	cmd.Flags().IntVar(&candidates, "candidates", defaultCandidates, "candidate key lengths kept before scoring (0 keeps all)")
}

func runCrackCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyAnalyzeConfig(cmd, fileCfg.Analyze)
	applyStringSliceConfig(cmd, "strategy", &crackStrategies, fileCfg.Analyze.Strategies)
	applyFloatConfig(cmd, "freq-weight", &crackFreqWeight, fileCfg.Analyze.FreqWeight)
	applyStringConfig(cmd, "recovery", &crackRecovery, fileCfg.Analyze.Recovery)
	applyIntConfig(cmd, "population", &gaPopulation, fileCfg.Genetic.Population)
	applyIntConfig(cmd, "generations", &gaGenerations, fileCfg.Genetic.Generations)
	applyFloatConfig(cmd, "crossover", &gaCrossover, fileCfg.Genetic.Crossover)
	applyFloatConfig(cmd, "mutation", &gaMutation, fileCfg.Genetic.Mutation)
	applyIntConfig(cmd, "elite", &gaElite, fileCfg.Genetic.Elite)
	applyIntConfig(cmd, "patience", &gaPatience, fileCfg.Genetic.Patience)
	applyInt64Config(cmd, "seed", &gaSeed, fileCfg.Genetic.Seed)
	applyBoolConfig(cmd, "progress", &crackProgress, fileCfg.Genetic.Progress)

	if err := validateCrackFlags(cmd); err != nil {
		return err
	}
	text, err := readCiphertext(args)
	if err != nil {
		return err
	}

	cfg := engine.DefaultConfig()
	cfg.Kasiski = kasiskiConfig(cmd)
	cfg.Strategies = crackStrategies
	cfg.FrequencyWeight = crackFreqWeight
	cfg.Recovery = crackRecovery
	cfg.Genetic = genetic.Params{
		Population:    gaPopulation,
		Generations:   gaGenerations,
		CrossoverRate: gaCrossover,
		MutationRate:  gaMutation,
		Elite:         gaElite,
		Patience:      gaPatience,
		Seed:          gaSeed,
	}
	ov := model.Overrides{Key: crackKey, KeyLength: keyLengthOverride(cmd)}

	logger := newLogger()
	var rep engine.Report
	var strategies string
	if crackRecovery == recovery.NameGenetic && crackKey == "" && crackProgress && term.IsTerminal(int(os.Stderr.Fd())) {
		rep, strategies, err = crackWithProgress(cmd.Context(), cfg, logger, text, ov)
	} else {
		var eng *engine.Engine
		eng, err = engine.New(cfg, engine.WithLogger(logger))
		if err != nil {
			return err
		}
		strategies = eng.StrategyNames()
		rep, err = eng.Crack(cmd.Context(), text, ov)
	}
	if err != nil {
		return fmt.Errorf("failed to crack ciphertext: %w", err)
	}

	if err := report.RenderCrack(cmd.OutOrStdout(), rep, verbose); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !historyEnabled(fileCfg.History) {
		return nil
	}
	if err := saveHistory(cmd.Context(), historyPath(fileCfg.History), text, strategies, rep); err != nil {
		logErrf("failed to record history: %v\n", err)
	}
	return nil
}

type crackOutcome struct {
	rep engine.Report
	err error
}

// crackWithProgress runs the crack in the background while a Bubble Tea
// program renders generation updates on stderr.
func crackWithProgress(parent context.Context, cfg engine.Config, logger *slog.Logger, text string, ov model.Overrides) (engine.Report, string, error) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	ui := progressui.NewModel(cfg.Genetic.Generations, cancel)
	program := tea.NewProgram(ui, tea.WithOutput(os.Stderr))
	eng, err := engine.New(cfg,
		engine.WithLogger(logger),
		engine.WithProgress(func(p genetic.Progress) {
			program.Send(progressui.ProgressMsg(p))
		}),
	)
	if err != nil {
		return engine.Report{}, "", err
	}

	done := make(chan crackOutcome, 1)
	go func() {
		rep, err := eng.Crack(ctx, text, ov)
		done <- crackOutcome{rep: rep, err: err}
		program.Send(progressui.DoneMsg{Err: err})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return engine.Report{}, "", fmt.Errorf("failed to run progress view: %w", err)
	}
	if ui.Interrupted() {
		cancel()
		<-done
		return engine.Report{}, "", context.Canceled
	}
	out := <-done
	return out.rep, eng.StrategyNames(), out.err
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Show IC, letter frequencies, and repeated n-gram distances",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyzeCmd,
	}
	bindInputFlags(cmd)
	bindKasiskiFlags(cmd)
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyAnalyzeConfig(cmd, fileCfg.Analyze)
	if err := validateKasiskiFlags(); err != nil {
		return err
	}
	text, err := readCiphertext(args)
	if err != nil {
		return err
	}
	cfg := engine.DefaultConfig()
	cfg.Kasiski = kasiskiConfig(cmd)
	eng, err := engine.New(cfg, engine.WithLogger(newLogger()))
	if err != nil {
		return err
	}
	a, err := eng.Analyze(text)
	if err != nil {
		return fmt.Errorf("failed to analyze ciphertext: %w", err)
	}
	if err := report.RenderAnalysis(cmd.OutOrStdout(), a, text, eng.Reference(), 0); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newCipherCmd(use, short string, apply func(text, key string) (string, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [file]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readCiphertext(args)
			if err != nil {
				return err
			}
			out, err := apply(text, cipherKey)
			if err != nil {
				return fmt.Errorf("failed to %s: %w", use, err)
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), out); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
	bindInputFlags(cmd)
	cmd.Flags().StringVar(&cipherKey, "key", "", "key of ASCII letters")
	if err := cmd.MarkFlagRequired("key"); err != nil {
		panic(err)
	}
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded crack attempts",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to the last N attempts (0 lists all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	st, err := store.Open(historyPath(fileCfg.History))
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	records, err := st.ListAnalyses(cmd.Context(), historyLast)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if err := report.RenderHistory(cmd.OutOrStdout(), records); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func readCiphertext(args []string) (string, error) {
	var text string
	switch {
	case len(args) == 1 && inputText != "":
		return "", fmt.Errorf("pass either a file or --text, not both")
	case len(args) == 1:
		loaded, err := input.LoadCiphertext(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to load ciphertext: %w", err)
		}
		text = loaded
	case inputText != "":
		text = inputText
	default:
		if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return "", fmt.Errorf("no input: pass a file, --text, or pipe ciphertext on stdin")
		}
		loaded, err := input.Read(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text = loaded
	}
	if lettersOnly {
		text = input.LettersOnly(text)
	}
	return text, nil
}

func saveHistory(ctx context.Context, path, text, strategies string, rep engine.Report) error {
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	sum := sha256.Sum256([]byte(text))
	_, err = st.InsertAnalysis(ctx, model.AnalysisRecord{
		CiphertextHash: hex.EncodeToString(sum[:]),
		Letters:        rep.Analysis.Letters,
		IC:             rep.Analysis.IC,
		KeyLength:      rep.KeyLength,
		Key:            rep.Result.Key,
		Recovery:       rep.Recovery,
		Strategies:     strategies,
		Confidence:     rep.Result.Confidence,
		DurationMs:     rep.Duration.Milliseconds(),
		Candidates:     rep.Estimation.Scores,
	})
	return err
}

func historyEnabled(cfg config.HistoryConfig) bool {
	if noHistory {
		return false
	}
	return cfg.Enabled == nil || *cfg.Enabled
}

func historyPath(cfg config.HistoryConfig) string {
	if cfg.Path != nil && *cfg.Path != "" {
		return *cfg.Path
	}
	return config.DefaultDBPath()
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
