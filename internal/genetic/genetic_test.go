package genetic

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/verte-zerg/vigsolve/internal/cipher"
	"github.com/verte-zerg/vigsolve/internal/freq"
	"github.com/verte-zerg/vigsolve/internal/model"
	"github.com/verte-zerg/vigsolve/internal/testutil"
)

func testParams() Params {
	p := DefaultParams()
	p.Population = 200
	p.Generations = 300
	p.Elite = 20
	p.Patience = 0
	p.Seed = 42
	return p
}

func encryptSample(t *testing.T, key string) string {
	t.Helper()
	enc, err := cipher.Encrypt(testutil.EnglishSample, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	return enc
}

func TestRunRecoversShortKey(t *testing.T) {
	ciphertext := encryptSample(t, "DOG")
	s, err := New(freq.English(), testParams())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := s.Run(context.Background(), ciphertext, 3)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Key != "DOG" {
		t.Fatalf("expected DOG, got %q (fitness %f)", res.Key, res.Fitness)
	}
	if res.Stop != StopBudget || res.Generations != 300 {
		t.Fatalf("unexpected stop: %+v", res)
	}
}

func TestRunIsReproducibleWithSeed(t *testing.T) {
	ciphertext := encryptSample(t, "CAT")
	p := testParams()
	p.Generations = 20
	var results []Result
	for i := 0; i < 2; i++ {
		s, err := New(freq.English(), p)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		res, err := s.Run(context.Background(), ciphertext, 3)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		results = append(results, res)
	}
	if results[0] != results[1] {
		t.Fatalf("expected identical results, got %+v and %+v", results[0], results[1])
	}
}

func TestRunStopsOnPlateau(t *testing.T) {
	ciphertext := encryptSample(t, "KEY")
	p := testParams()
	p.Generations = 1000
	p.Patience = 5
	s, err := New(freq.English(), p)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := s.Run(context.Background(), ciphertext, 3)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Stop != StopPlateau || res.Generations >= 1000 {
		t.Fatalf("expected plateau stop, got %+v", res)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ciphertext := encryptSample(t, "KEY")
	s, err := New(freq.English(), testParams())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Run(ctx, ciphertext, 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Stop != StopCancelled {
		t.Fatalf("expected cancelled stop, got %q", res.Stop)
	}
}

func TestRecoverKeepsBestKeyOnCancel(t *testing.T) {
	ciphertext := encryptSample(t, "KEY")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, err := New(freq.English(), testParams(), WithProgress(func(pr Progress) {
		if pr.Generation == 3 {
			cancel()
		}
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	key, err := s.Recover(ctx, ciphertext, 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(key.Key) != 3 || len(key.Shifts) != 3 {
		t.Fatalf("expected best-so-far key, got %+v", key)
	}

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	if key, err := s.Recover(ctx, ciphertext, 3); err == nil || key.Key != "" {
		t.Fatalf("expected no key before the first generation, got %+v (%v)", key, err)
	}
}

func TestProgressReportedEveryGeneration(t *testing.T) {
	ciphertext := encryptSample(t, "KEY")
	p := testParams()
	p.Generations = 7
	calls := 0
	s, err := New(freq.English(), p, WithProgress(func(pr Progress) {
		calls++
		if pr.Generation != calls || pr.Generations != 7 || pr.BestKey == "" {
			t.Errorf("unexpected progress: %+v", pr)
		}
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.Run(context.Background(), ciphertext, 3); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if calls != 7 {
		t.Fatalf("expected 7 progress calls, got %d", calls)
	}
}

func TestEvaluatorMatchesDecryptedFitness(t *testing.T) {
	ciphertext := encryptSample(t, "LEMON")
	ev, err := newEvaluator(ciphertext, 5, freq.English())
	if err != nil {
		t.Fatalf("newEvaluator failed: %v", err)
	}
	for _, key := range []string{"LEMON", "AAAAA", "ZQXJK"} {
		plain, err := cipher.Decrypt(ciphertext, key)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		want := Fitness(plain, freq.English())
		if got := ev.fitness([]byte(key)); math.Abs(got-want) > 1e-9 {
			t.Fatalf("key %s: expected %f, got %f", key, want, got)
		}
	}
}

func TestRunInvalidLength(t *testing.T) {
	s, err := New(freq.English(), testParams())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.Run(context.Background(), "AB", 3); !errors.Is(err, model.ErrInvalidKeyLength) {
		t.Fatalf("expected ErrInvalidKeyLength, got %v", err)
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("expected defaults to validate: %v", err)
	}
	bad := DefaultParams()
	bad.Elite = bad.Population + 1
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for elite > population")
	}
	bad = DefaultParams()
	bad.MutationRate = 1.5
	if _, err := New(freq.English(), bad); err == nil {
		t.Fatalf("expected New to reject invalid params")
	}
}
