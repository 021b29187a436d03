// Package cipher applies Vigenère keys to text.
package cipher

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/vigsolve/internal/freq"
	"github.com/verte-zerg/vigsolve/internal/model"
)

// ParseKey converts a key of ASCII letters into shift values 0..25.
func ParseKey(key string) ([]int, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty: %w", model.ErrInvalidKey)
	}
	shifts := make([]int, len(key))
	for i := 0; i < len(key); i++ {
		idx, ok := freq.LetterIndex(key[i])
		if !ok {
			return nil, fmt.Errorf("key character %q at %d is not a letter: %w", key[i], i, model.ErrInvalidKey)
		}
		shifts[i] = idx
	}
	return shifts, nil
}

// KeyString renders shift values as an upper-case key.
func KeyString(shifts []int) string {
	var b strings.Builder
	b.Grow(len(shifts))
	for _, s := range shifts {
		b.WriteByte(byte('A' + ((s%26)+26)%26))
	}
	return b.String()
}

// Decrypt removes key from text.
func Decrypt(text, key string) (string, error) {
	shifts, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	return DecryptShifts(text, shifts), nil
}

// Encrypt applies key to text.
func Encrypt(text, key string) (string, error) {
	shifts, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	return apply(text, shifts, 1), nil
}

// DecryptShifts decrypts with pre-parsed shifts. shifts must not be empty.
func DecryptShifts(text string, shifts []int) string {
	return apply(text, shifts, -1)
}

// apply shifts every ASCII letter by sign*key[pos mod len(key)]. The key
// position advances once per rune, letters or not; case is preserved.
func apply(text string, shifts []int, sign int) string {
	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, r := range text {
		k := shifts[pos%len(shifts)]
		pos++
		var base rune
		switch {
		case r >= 'a' && r <= 'z':
			base = 'a'
		case r >= 'A' && r <= 'Z':
			base = 'A'
		default:
			b.WriteRune(r)
			continue
		}
		c := int(r - base)
		b.WriteRune(base + rune(((c+sign*k)%26+26)%26))
	}
	return b.String()
}
