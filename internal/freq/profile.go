// Package freq computes letter frequencies and coincidence indices.
package freq

import (
	"fmt"

	"github.com/verte-zerg/vigsolve/internal/model"
)

// AlphabetSize is the number of letters considered.
const AlphabetSize = 26

// Counts holds absolute letter counts indexed A=0..Z=25.
type Counts [AlphabetSize]int

// Profile is the relative letter frequency of a stream.
type Profile struct {
	Freq    [AlphabetSize]float64
	Letters int
}

// LetterIndex maps an ASCII letter to 0..25, case-insensitively.
func LetterIndex(b byte) (int, bool) {
	switch {
	case b >= 'A' && b <= 'Z':
		return int(b - 'A'), true
	case b >= 'a' && b <= 'z':
		return int(b - 'a'), true
	default:
		return 0, false
	}
}

// IsLetter reports whether b is an ASCII letter.
func IsLetter(b byte) bool {
	_, ok := LetterIndex(b)
	return ok
}

// Count tallies ASCII letters in text. Bytes of multi-byte runes are never letters.
func Count(text string) (Counts, int) {
	var counts Counts
	n := 0
	for i := 0; i < len(text); i++ {
		if idx, ok := LetterIndex(text[i]); ok {
			counts[idx]++
			n++
		}
	}
	return counts, n
}

// CountBytes is Count for a byte slice.
func CountBytes(b []byte) (Counts, int) {
	var counts Counts
	n := 0
	for _, ch := range b {
		if idx, ok := LetterIndex(ch); ok {
			counts[idx]++
			n++
		}
	}
	return counts, n
}

// NewProfile builds the frequency profile of text.
func NewProfile(text string) (Profile, error) {
	counts, n := Count(text)
	return ProfileFromCounts(counts, n)
}

// ProfileFromCounts converts absolute counts to relative frequencies.
func ProfileFromCounts(counts Counts, n int) (Profile, error) {
	if n == 0 {
		return Profile{}, fmt.Errorf("frequency profile of text with no letters: %w", model.ErrInputTooShort)
	}
	p := Profile{Letters: n}
	for i, c := range counts {
		p.Freq[i] = float64(c) / float64(n)
	}
	return p, nil
}

// Of returns the frequency of letter, or 0 for non-letters.
func (p Profile) Of(letter byte) float64 {
	idx, ok := LetterIndex(letter)
	if !ok {
		return 0
	}
	return p.Freq[idx]
}

// IndexOfCoincidence returns sum(f*(f-1)) / (N*(N-1)) over the letters of text.
func IndexOfCoincidence(text string) (float64, error) {
	counts, n := Count(text)
	ic, ok := ICFromCounts(counts, n)
	if !ok {
		return 0, fmt.Errorf("index of coincidence needs at least 2 letters, got %d: %w", n, model.ErrInputTooShort)
	}
	return ic, nil
}

// ICFromCounts computes the index of coincidence from absolute counts.
// It reports false when n <= 1.
func ICFromCounts(counts Counts, n int) (float64, bool) {
	if n <= 1 {
		return 0, false
	}
	var sum int64
	for _, c := range counts {
		sum += int64(c) * int64(c-1)
	}
	return float64(sum) / (float64(n) * float64(n-1)), true
}

// Fold maps text to one byte per rune: ASCII letters upper-cased, other ASCII
// kept, non-ASCII runes replaced by 0. Indices of the result are rune positions.
func Fold(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, byte(r-'a'+'A'))
		case r < 0x80:
			out = append(out, byte(r))
		default:
			out = append(out, 0)
		}
	}
	return out
}
