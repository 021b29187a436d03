package keylen

import (
	"testing"

	"github.com/verte-zerg/vigsolve/internal/cipher"
	"github.com/verte-zerg/vigsolve/internal/testutil"
)

func TestShortestPeriodReducesMultiples(t *testing.T) {
	cases := []struct {
		key    string
		length int
		want   int
	}{
		{key: "VIGENERE", length: 56, want: 8},
		{key: "VIGENERE", length: 8, want: 8},
		{key: "ZZ", length: 92, want: 2},
	}
	for _, tc := range cases {
		ciphertext, err := cipher.Encrypt(testutil.EnglishSample, tc.key)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		if got := ShortestPeriod(ciphertext, tc.length, DefaultPeriodConfig()); got != tc.want {
			t.Fatalf("%s at %d: expected %d, got %d", tc.key, tc.length, tc.want, got)
		}
	}
}

func TestShortestPeriodKeepsLengthOnThinColumns(t *testing.T) {
	if got := ShortestPeriod("LXFOPVEFRNHR", 10, DefaultPeriodConfig()); got != 10 {
		t.Fatalf("expected 10 to be kept, got %d", got)
	}
}

func TestShortestPeriodDisabled(t *testing.T) {
	ciphertext, err := cipher.Encrypt(testutil.EnglishSample, "ZZ")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if got := ShortestPeriod(ciphertext, 92, PeriodConfig{}); got != 92 {
		t.Fatalf("expected 92 with reduction disabled, got %d", got)
	}
}
