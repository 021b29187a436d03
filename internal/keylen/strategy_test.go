package keylen

import (
	"testing"

	"github.com/verte-zerg/vigsolve/internal/freq"
	"github.com/verte-zerg/vigsolve/internal/testutil"
)

func TestAutocorrelationScore(t *testing.T) {
	in := Input{Text: []byte("ABAB")}
	if got := (Autocorrelation{}).Score(in, 2); got != 2 {
		t.Fatalf("expected 2, got %f", got)
	}
	if got := (Autocorrelation{}).Score(in, 1); got != 1 {
		t.Fatalf("expected 1, got %f", got)
	}
	if got := (Autocorrelation{}).Score(in, 10); got != 1 {
		t.Fatalf("expected 1 without pairs, got %f", got)
	}
}

func TestFriedmanTestOnPlaintext(t *testing.T) {
	folded := freq.Fold(testutil.LettersOnly(testutil.EnglishSample))
	diff, best := FriedmanTest(folded, 4, freq.EnglishIC)
	if best < 1 || best > 4 {
		t.Fatalf("unexpected best length %d", best)
	}
	if diff < 0 || diff > 0.01 {
		t.Fatalf("expected small diff for English, got %f", diff)
	}
	score := (Friedman{}).Score(Input{Text: folded}, 4)
	if score != 1-diff {
		t.Fatalf("expected score %f, got %f", 1-diff, score)
	}
}

func TestFriedmanTestUndefined(t *testing.T) {
	if diff, best := FriedmanTest([]byte("A"), 3, freq.EnglishIC); diff != 0 || best != 0 {
		t.Fatalf("expected undefined result, got %f %d", diff, best)
	}
}

func TestParseStrategies(t *testing.T) {
	got, err := Parse([]string{"ic,gcd", " Friedman "})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 strategies, got %d", len(got))
	}
	if got[0].Name() != NameIndexOfCoincidence || got[1].Name() != NameGCD || got[2].Name() != NameFriedman {
		t.Fatalf("unexpected order: %v %v %v", got[0].Name(), got[1].Name(), got[2].Name())
	}
	if _, err := Parse([]string{"bogus"}); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
