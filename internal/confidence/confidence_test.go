package confidence

import (
	"errors"
	"testing"

	"github.com/verte-zerg/vigsolve/internal/cipher"
	"github.com/verte-zerg/vigsolve/internal/freq"
	"github.com/verte-zerg/vigsolve/internal/model"
	"github.com/verte-zerg/vigsolve/internal/testutil"
)

func TestScoreEnglishNearHundred(t *testing.T) {
	c, err := Score(testutil.EnglishSample, freq.English())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if !c.Determined || c.Percent < 90 || c.Percent > 110 {
		t.Fatalf("expected roughly 100%%, got %v", c)
	}
}

func TestScoreUndetermined(t *testing.T) {
	for _, text := range []string{"", "?!", "a"} {
		c, err := Score(text, freq.English())
		if !errors.Is(err, model.ErrUndeterminedConfidence) {
			t.Fatalf("expected ErrUndeterminedConfidence for %q, got %v", text, err)
		}
		if c.Determined {
			t.Fatalf("expected undetermined confidence for %q", text)
		}
	}
}

func TestScoreNotClamped(t *testing.T) {
	c, err := Score("eeeeeeee", freq.English())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if c.Percent <= 100 {
		t.Fatalf("expected confidence above 100, got %f", c.Percent)
	}
}

func TestTrueKeyScoresHighest(t *testing.T) {
	const key = "LEMON"
	ciphertext, err := cipher.Encrypt(testutil.EnglishSample, key)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	plain, err := cipher.Decrypt(ciphertext, key)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	best, err := Score(plain, freq.English())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	for pos := 0; pos < len(key); pos++ {
		for delta := 1; delta < 26; delta++ {
			wrong := []byte(key)
			wrong[pos] = byte('A' + (int(wrong[pos]-'A')+delta)%26)
			guess, err := cipher.Decrypt(ciphertext, string(wrong))
			if err != nil {
				t.Fatalf("Decrypt failed: %v", err)
			}
			c, err := Score(guess, freq.English())
			if err != nil {
				t.Fatalf("Score failed: %v", err)
			}
			if c.Percent >= best.Percent {
				t.Fatalf("key %s scored %f >= true key %f", wrong, c.Percent, best.Percent)
			}
		}
	}
}
