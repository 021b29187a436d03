// Package genetic searches for a Vigenère key with a population-based
// stochastic search.
package genetic

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/vigsolve/internal/cipher"
	"github.com/verte-zerg/vigsolve/internal/freq"
	"github.com/verte-zerg/vigsolve/internal/model"
	"github.com/verte-zerg/vigsolve/internal/recovery"
)

const (
	defaultPopulation  = 500
	defaultGenerations = 300
	defaultCrossover   = 0.8
	defaultMutation    = 0.15
	defaultElite       = 50
	defaultPatience    = 40
	defaultCacheSize   = 1 << 14
)

// Params tunes the search. Seed 0 seeds from the clock; Patience 0 disables
// the plateau stop; Workers 0 uses GOMAXPROCS.
type Params struct {
	Population    int
	Generations   int
	CrossoverRate float64
	MutationRate  float64
	Elite         int
	Patience      int
	Seed          int64
	Workers       int
}

// DefaultParams returns the default search parameters.
func DefaultParams() Params {
	return Params{
		Population:    defaultPopulation,
		Generations:   defaultGenerations,
		CrossoverRate: defaultCrossover,
		MutationRate:  defaultMutation,
		Elite:         defaultElite,
		Patience:      defaultPatience,
	}
}

// Validate checks parameter ranges.
func (p Params) Validate() error {
	if p.Population < 2 {
		return fmt.Errorf("population must be >= 2")
	}
	if p.Generations < 1 {
		return fmt.Errorf("generations must be >= 1")
	}
	if p.CrossoverRate < 0 || p.CrossoverRate > 1 {
		return fmt.Errorf("crossover rate must be between 0 and 1")
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be between 0 and 1")
	}
	if p.Elite < 1 || p.Elite > p.Population {
		return fmt.Errorf("elite must be between 1 and population")
	}
	if p.Patience < 0 {
		return fmt.Errorf("patience must be >= 0")
	}
	if p.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	return nil
}

// Stop reasons reported in Result.
const (
	StopBudget    = "budget"
	StopPlateau   = "plateau"
	StopCancelled = "cancelled"
)

// Progress is reported once per generation.
type Progress struct {
	Generation  int
	Generations int
	BestKey     string
	BestFitness float64
}

// Result is the best key found.
type Result struct {
	Key         string
	Fitness     float64
	Generations int
	Stop        string
}

// Option configures a Search.
type Option func(*Search)

// WithProgress registers a per-generation callback.
func WithProgress(fn func(Progress)) Option {
	return func(s *Search) {
		s.onProgress = fn
	}
}

// Search runs the genetic key search.
type Search struct {
	params     Params
	ref        freq.Table
	rnd        *rand.Rand
	onProgress func(Progress)
}

// New returns a Search seeded from params.Seed, or the clock when it is 0.
func New(ref freq.Table, params Params, opts ...Option) (*Search, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Search{
		params: params,
		ref:    ref,
		rnd:    rand.New(rand.NewSource(seed)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name implements recovery.Strategy.
func (s *Search) Name() string { return recovery.NameGenetic }

// Recover implements recovery.Strategy. When ctx ends after at least one
// generation, the best key so far is returned along with the context error.
func (s *Search) Recover(ctx context.Context, text string, length int) (recovery.Key, error) {
	res, err := s.Run(ctx, text, length)
	if err != nil && (res.Key == "" || ctx.Err() == nil) {
		return recovery.Key{}, err
	}
	shifts, perr := cipher.ParseKey(res.Key)
	if perr != nil {
		return recovery.Key{}, perr
	}
	return recovery.Key{Key: res.Key, Shifts: shifts}, err
}

// Run evolves keys of the given length. On cancellation it returns the best
// key seen so far together with the context error.
func (s *Search) Run(ctx context.Context, text string, length int) (Result, error) {
	ev, err := newEvaluator(text, length, s.ref)
	if err != nil {
		return Result{}, err
	}
	p := s.params
	workers := p.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	population := make([][]byte, p.Population)
	for i := range population {
		population[i] = s.randomKey(length)
	}

	best := Result{Fitness: math.Inf(1), Stop: StopBudget}
	stale := 0
	for gen := 0; gen < p.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			best.Stop = StopCancelled
			return best, err
		}
		ranked, err := ev.rank(ctx, population, workers)
		if err != nil {
			best.Stop = StopCancelled
			return best, err
		}
		best.Generations = gen + 1
		if top := ranked[0]; top.fitness < best.Fitness {
			best.Key = string(top.key)
			best.Fitness = top.fitness
			stale = 0
		} else {
			stale++
		}
		if s.onProgress != nil {
			s.onProgress(Progress{
				Generation:  gen + 1,
				Generations: p.Generations,
				BestKey:     best.Key,
				BestFitness: best.Fitness,
			})
		}
		if p.Patience > 0 && stale >= p.Patience {
			best.Stop = StopPlateau
			break
		}
		population = s.breed(ranked[:p.Elite], length)
	}
	return best, nil
}

// breed keeps the elite and refills the population from elite parents.
func (s *Search) breed(elite []scored, length int) [][]byte {
	p := s.params
	next := make([][]byte, 0, p.Population)
	for _, e := range elite {
		next = append(next, e.key)
	}
	for len(next) < p.Population {
		a := elite[s.rnd.Intn(len(elite))].key
		b := elite[s.rnd.Intn(len(elite))].key
		c1 := append([]byte(nil), a...)
		c2 := append([]byte(nil), b...)
		if length > 1 && s.rnd.Float64() < p.CrossoverRate {
			point := 1 + s.rnd.Intn(length-1)
			copy(c1[point:], b[point:])
			copy(c2[point:], a[point:])
		}
		for _, child := range [][]byte{c1, c2} {
			s.mutate(child)
			if len(next) < p.Population {
				next = append(next, child)
			}
		}
	}
	return next
}

func (s *Search) mutate(key []byte) {
	for i := range key {
		if s.rnd.Float64() < s.params.MutationRate {
			key[i] = byte('A' + s.rnd.Intn(freq.AlphabetSize))
		}
	}
}

func (s *Search) randomKey(length int) []byte {
	key := make([]byte, length)
	for i := range key {
		key[i] = byte('A' + s.rnd.Intn(freq.AlphabetSize))
	}
	return key
}

type scored struct {
	key     []byte
	fitness float64
}

// evaluator scores keys from per-column ciphertext counts: decrypting column
// j with shift k maps cipher letter i+k to plaintext letter i.
type evaluator struct {
	counts  []freq.Counts
	letters int
	ref     freq.Table
	cache   *lru.Cache[string, float64]
}

func newEvaluator(text string, length int, ref freq.Table) (*evaluator, error) {
	folded := freq.Fold(text)
	_, letters := freq.CountBytes(folded)
	if length <= 0 || length > letters {
		return nil, fmt.Errorf("search key of length %d in %d letters: %w", length, letters, model.ErrInvalidKeyLength)
	}
	counts, _ := freq.ColumnCounts(folded, length)
	cache, err := lru.New[string, float64](defaultCacheSize)
	if err != nil {
		return nil, err
	}
	return &evaluator{counts: counts, letters: letters, ref: ref, cache: cache}, nil
}

func (e *evaluator) fitness(key []byte) float64 {
	k := string(key)
	if v, ok := e.cache.Get(k); ok {
		return v
	}
	var plain [freq.AlphabetSize]int
	for col, c := range e.counts {
		shift := int(key[col] - 'A')
		for i := 0; i < freq.AlphabetSize; i++ {
			plain[i] += c[(i+shift)%freq.AlphabetSize]
		}
	}
	v := 0.0
	for i, c := range plain {
		v += math.Abs(float64(c)/float64(e.letters) - e.ref[i])
	}
	e.cache.Add(k, v)
	return v
}

// rank scores the population concurrently and sorts it by fitness, then key.
// All scores are in before the caller breeds the next generation.
func (e *evaluator) rank(ctx context.Context, population [][]byte, workers int) ([]scored, error) {
	out := make([]scored, len(population))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	chunk := (len(population) + workers - 1) / workers
	for start := 0; start < len(population); start += chunk {
		end := min(start+chunk, len(population))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				out[i] = scored{key: population[i], fitness: e.fitness(population[i])}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].fitness == out[j].fitness {
			return string(out[i].key) < string(out[j].key)
		}
		return out[i].fitness < out[j].fitness
	})
	return out, nil
}

// Fitness is the summed absolute difference between the letter distribution
// of plaintext and the reference table. Lower is better.
func Fitness(plaintext string, ref freq.Table) float64 {
	counts, n := freq.Count(plaintext)
	v := 0.0
	for i, c := range counts {
		observed := 0.0
		if n > 0 {
			observed = float64(c) / float64(n)
		}
		v += math.Abs(observed - ref[i])
	}
	return v
}
