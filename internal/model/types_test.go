package model

import "testing"

func TestConfidenceString(t *testing.T) {
	if got := (Confidence{}).String(); got != "undetermined" {
		t.Fatalf("expected undetermined, got %q", got)
	}
	if got := (Confidence{Percent: 123.456, Determined: true}).String(); got != "123.46%" {
		t.Fatalf("unexpected confidence string: %q", got)
	}
}
