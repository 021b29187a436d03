// Package engine wires the statistical components into the cracking pipeline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/verte-zerg/vigsolve/internal/cipher"
	"github.com/verte-zerg/vigsolve/internal/confidence"
	"github.com/verte-zerg/vigsolve/internal/freq"
	"github.com/verte-zerg/vigsolve/internal/genetic"
	"github.com/verte-zerg/vigsolve/internal/kasiski"
	"github.com/verte-zerg/vigsolve/internal/keylen"
	"github.com/verte-zerg/vigsolve/internal/model"
	"github.com/verte-zerg/vigsolve/internal/recovery"
)

const (
	defaultFrequencyWeight = 0.01
	defaultFallbackMax     = 12
)

// RecoveryExplicit marks a report whose key was supplied by the caller.
const RecoveryExplicit = "explicit"

// Logger receives engine diagnostics. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// Config selects strategies and tunes every stage.
type Config struct {
	Kasiski         kasiski.Config
	Strategies      []string
	FrequencyWeight float64
	Recovery        string
	Genetic         genetic.Params
	// Period shortens an estimated length to the key period it is a multiple of.
	// A zero MinIC keeps the estimate as is.
	Period keylen.PeriodConfig
	// FallbackMaxLength bounds the lengths tried when no repeats are found; 0 disables it.
	FallbackMaxLength int
}

// DefaultConfig returns autocorrelation + IC scoring with chi-squared recovery.
func DefaultConfig() Config {
	return Config{
		Kasiski:           kasiski.DefaultConfig(),
		Strategies:        []string{keylen.NameAutocorrelation, keylen.NameIndexOfCoincidence},
		FrequencyWeight:   defaultFrequencyWeight,
		Recovery:          recovery.NameChiSquared,
		Genetic:           genetic.DefaultParams(),
		Period:            keylen.DefaultPeriodConfig(),
		FallbackMaxLength: defaultFallbackMax,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger injects a logger.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithReference replaces the English reference table.
func WithReference(ref freq.Table) Option {
	return func(e *Engine) {
		e.ref = ref
	}
}

// WithProgress receives genetic search progress.
func WithProgress(fn func(genetic.Progress)) Option {
	return func(e *Engine) {
		e.onProgress = fn
	}
}

// Engine runs the analysis pipeline. It holds no per-text state.
type Engine struct {
	cfg        Config
	ref        freq.Table
	log        Logger
	onProgress func(genetic.Progress)
	strategies []keylen.Strategy
}

// New validates cfg and builds an Engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg: cfg,
		ref: freq.English(),
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	strategies, err := keylen.Parse(cfg.Strategies)
	if err != nil {
		return nil, err
	}
	if len(strategies) == 0 {
		return nil, fmt.Errorf("at least one key length strategy is required")
	}
	e.strategies = strategies
	if _, err := e.recoverer(); err != nil {
		return nil, err
	}
	return e, nil
}

// Analysis holds the diagnostics of a ciphertext.
type Analysis struct {
	Profile    freq.Profile
	IC         float64
	Letters    int
	Distances  []kasiski.DistanceCount
	Candidates []int
}

// Analyze profiles text and mines key length candidates.
func (e *Engine) Analyze(text string) (Analysis, error) {
	profile, err := freq.NewProfile(text)
	if err != nil {
		return Analysis{}, err
	}
	ic, err := freq.IndexOfCoincidence(text)
	if err != nil {
		return Analysis{}, err
	}
	res := kasiski.Examine(text, e.cfg.Kasiski)
	e.log.Debug("kasiski examination", "distances", len(res.Distances), "candidates", res.Candidates)
	return Analysis{
		Profile:    profile,
		IC:         ic,
		Letters:    profile.Letters,
		Distances:  res.Distances,
		Candidates: res.Candidates,
	}, nil
}

// EstimateKeyLength scores candidates with the configured strategies.
// A non-nil explicit length is returned without scoring.
func (e *Engine) EstimateKeyLength(candidates []int, text string, explicit *int) (keylen.Estimation, error) {
	est, err := keylen.Estimate(keylen.Request{
		Strategies:      e.strategies,
		Candidates:      candidates,
		Text:            text,
		Explicit:        explicit,
		FrequencyWeight: e.cfg.FrequencyWeight,
	})
	if err != nil {
		return keylen.Estimation{}, err
	}
	for _, c := range est.Scores {
		e.log.Debug("key length score", "length", c.Length, "score", c.Score)
	}
	return est, nil
}

// Decrypt recovers a key of keyLength, unless explicitKey is given, and
// applies it. Too few plaintext letters yield an undetermined confidence.
// A search stopped by ctx still decrypts with the best key it found.
func (e *Engine) Decrypt(ctx context.Context, ciphertext string, keyLength int, explicitKey string) (model.DecryptionResult, error) {
	key := explicitKey
	if key == "" {
		r, err := e.recoverer()
		if err != nil {
			return model.DecryptionResult{}, err
		}
		recovered, err := r.Recover(ctx, ciphertext, keyLength)
		if err != nil {
			if ctx.Err() == nil || recovered.Key == "" {
				return model.DecryptionResult{}, err
			}
			e.log.Info("key search stopped early, keeping best key", "key", recovered.Key, "reason", err)
		}
		key = recovered.Key
		e.log.Debug("recovered key", "strategy", r.Name(), "key", key)
	}
	plaintext, err := cipher.Decrypt(ciphertext, key)
	if err != nil {
		return model.DecryptionResult{}, err
	}
	conf, err := confidence.Score(plaintext, e.ref)
	if err != nil && !errors.Is(err, model.ErrUndeterminedConfidence) {
		return model.DecryptionResult{}, err
	}
	return model.DecryptionResult{Key: key, Plaintext: plaintext, Confidence: conf}, nil
}

// Report is the outcome of a full crack. KeyLength may be a divisor of
// Estimation.Length when the estimate was a multiple of the key period.
type Report struct {
	Analysis   Analysis
	Estimation keylen.Estimation
	KeyLength  int
	Recovery   string
	Result     model.DecryptionResult
	Duration   time.Duration
}

// Crack runs the whole pipeline, honoring overrides.
func (e *Engine) Crack(ctx context.Context, text string, ov model.Overrides) (Report, error) {
	start := time.Now()
	analysis, err := e.Analyze(text)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Analysis: analysis, Recovery: e.cfg.Recovery}

	switch {
	case ov.Key != "":
		shifts, err := cipher.ParseKey(ov.Key)
		if err != nil {
			return Report{}, err
		}
		rep.KeyLength = len(shifts)
		rep.Recovery = RecoveryExplicit
	default:
		est, err := e.EstimateKeyLength(analysis.Candidates, text, ov.KeyLength)
		if errors.Is(err, model.ErrNoCandidates) && e.cfg.FallbackMaxLength > 1 {
			fallback := fallbackLengths(e.cfg.FallbackMaxLength, analysis.Letters)
			e.log.Info("no repeated n-grams, scoring fallback lengths", "max", e.cfg.FallbackMaxLength)
			est, err = e.EstimateKeyLength(fallback, text, nil)
		}
		if err != nil {
			return Report{}, err
		}
		rep.Estimation = est
		rep.KeyLength = est.Length
		if !est.Explicit {
			if p := keylen.ShortestPeriod(text, est.Length, e.cfg.Period); p != est.Length {
				e.log.Debug("estimated length is a multiple of a shorter period", "estimated", est.Length, "period", p)
				rep.KeyLength = p
			}
		}
	}
	e.log.Info("key length selected", "length", rep.KeyLength, "explicit", ov.KeyLength != nil || ov.Key != "")

	result, err := e.Decrypt(ctx, text, rep.KeyLength, ov.Key)
	if err != nil {
		return Report{}, err
	}
	rep.Result = result
	rep.Duration = time.Since(start)
	e.log.Info("decryption finished", "key", result.Key, "confidence", result.Confidence.String(), "duration", rep.Duration)
	return rep, nil
}

// StrategyNames lists the configured key length strategies.
func (e *Engine) StrategyNames() string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return strings.Join(names, ",")
}

// Reference returns the reference table in use.
func (e *Engine) Reference() freq.Table {
	return e.ref
}

func (e *Engine) recoverer() (recovery.Strategy, error) {
	switch strings.ToLower(e.cfg.Recovery) {
	case "", recovery.NameChiSquared:
		return recovery.ChiSquared{Reference: e.ref}, nil
	case recovery.NameMutualIC:
		return recovery.MutualIC{Reference: e.ref}, nil
	case recovery.NameGenetic:
		var opts []genetic.Option
		if e.onProgress != nil {
			opts = append(opts, genetic.WithProgress(e.onProgress))
		}
		return genetic.New(e.ref, e.cfg.Genetic, opts...)
	default:
		return nil, fmt.Errorf("unknown recovery strategy %q (available: %s, %s, %s)",
			e.cfg.Recovery, recovery.NameChiSquared, recovery.NameMutualIC, recovery.NameGenetic)
	}
}

func fallbackLengths(max, letters int) []int {
	if letters < max {
		max = letters
	}
	var out []int
	for l := 2; l <= max; l++ {
		out = append(out, l)
	}
	return out
}
