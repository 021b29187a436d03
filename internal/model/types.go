// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Overrides carries operator-supplied values that bypass estimation.
// A nil KeyLength means the length is estimated.
type Overrides struct {
	Key       string
	KeyLength *int
}

// Candidate is a key length with its aggregate score.
type Candidate struct {
	Length int
	Score  float64
}

// Confidence is a plausibility percentage for a decryption.
// Percent is only meaningful when Determined is true.
type Confidence struct {
	Percent    float64
	Determined bool
}

// String formats the confidence for display.
func (c Confidence) String() string {
	if !c.Determined {
		return "undetermined"
	}
	return fmt.Sprintf("%.2f%%", c.Percent)
}

// DecryptionResult is the outcome of applying a key to ciphertext.
type DecryptionResult struct {
	Key        string
	Plaintext  string
	Confidence Confidence
}

// AnalysisRecord captures a completed crack attempt for the history store.
type AnalysisRecord struct {
	ID             int64
	RunID          string
	CreatedAt      time.Time
	CiphertextHash string
	Letters        int
	IC             float64
	KeyLength      int
	Key            string
	Recovery       string
	Strategies     string
	Confidence     Confidence
	DurationMs     int64
	Candidates     []Candidate
}
