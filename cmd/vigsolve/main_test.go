package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/vigsolve/internal/cipher"
	"github.com/verte-zerg/vigsolve/internal/testutil"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolateXDG(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir+"/config")
	t.Setenv("XDG_DATA_HOME", dir+"/data")
}

func TestCrackWithExplicitKey(t *testing.T) {
	isolateXDG(t)
	out, err := runCLI(t, "--text", "LXFOPVEFRNHR", "--key", "LEMON", "--no-history")
	if err != nil {
		t.Fatalf("crack failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ATTACKATDAWN") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestEncryptDecryptCommands(t *testing.T) {
	isolateXDG(t)
	out, err := runCLI(t, "encrypt", "--key", "LEMON", "--text", "ATTACKATDAWN")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if strings.TrimSpace(out) != "LXFOPVEFRNHR" {
		t.Fatalf("unexpected ciphertext %q", out)
	}
	out, err = runCLI(t, "decrypt", "--key", "LEMON", "--text", "LXFOPVEFRNHR")
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if strings.TrimSpace(out) != "ATTACKATDAWN" {
		t.Fatalf("unexpected plaintext %q", out)
	}
	if _, err := runCLI(t, "encrypt", "--text", "ATTACK"); err == nil {
		t.Fatalf("expected missing --key error")
	}
}

func TestCrackRecordsHistory(t *testing.T) {
	isolateXDG(t)
	ciphertext, err := cipher.Encrypt(testutil.EnglishSample, "LEMON")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	out, err := runCLI(t, "--text", ciphertext, "--key-length", "5")
	if err != nil {
		t.Fatalf("crack failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "LEMON") {
		t.Fatalf("expected recovered key in output:\n%s", out)
	}

	out, err = runCLI(t, "history", "--last", "5")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "LEMON") || !strings.Contains(out, "chi-squared") {
		t.Fatalf("expected recorded attempt:\n%s", out)
	}
}

func TestCrackRejectsBadFlags(t *testing.T) {
	isolateXDG(t)
	cases := [][]string{
		{"--text", "LXFOP", "--min-ngram", "1", "--no-history"},
		{"--text", "LXFOP", "--min-ngram", "4", "--max-ngram", "3", "--no-history"},
		{"--text", "LXFOP", "--key", "LEMON", "--key-length", "3", "--no-history"},
		{"--text", "LXFOP", "--key-length", "0", "--no-history"},
		{"--text", "LXFOP", "--recovery", "bogus", "--no-history"},
		{"--text", "LXFOP", "--strategy", "bogus", "--no-history"},
	}
	for _, args := range cases {
		if _, err := runCLI(t, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestAnalyzeCommand(t *testing.T) {
	isolateXDG(t)
	out, err := runCLI(t, "analyze", "--text", "LXFOPVEFRNHR LXFOPVEFRNHR")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	for _, want := range []string{"IC:", "Letter frequencies", "Column IC by length:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestKasiskiConfigFromFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--max-ngram", "6", "--candidates", "0"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	cfg := kasiskiConfig(cmd)
	if cfg.MinLen != 3 || cfg.MaxLen != 6 || cfg.Limit != 0 || cfg.ShortText == 0 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if err := cmd.ParseFlags([]string{"--min-ngram", "4"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if cfg := kasiskiConfig(cmd); cfg.MinLen != 4 || cfg.ShortText != 0 {
		t.Fatalf("expected explicit min to disable short-text widening: %+v", cfg)
	}
}

func TestApplyConfigRespectsFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--population", "40"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	fromFile := 99
	applyIntConfig(cmd, "population", &gaPopulation, &fromFile)
	applyIntConfig(cmd, "generations", &gaGenerations, &fromFile)
	if gaPopulation != 40 || gaGenerations != 99 {
		t.Fatalf("unexpected values: population=%d generations=%d", gaPopulation, gaGenerations)
	}
	applyStringSliceConfig(cmd, "strategy", &crackStrategies, []string{"gcd"})
	if strings.Join(crackStrategies, ",") != "gcd" {
		t.Fatalf("unexpected strategies %v", crackStrategies)
	}
}

func TestDefaultConfigTemplate(t *testing.T) {
	tpl := defaultConfigTemplate()
	for _, want := range []string{"[analyze]", "[genetic]", "[history]", "population = 500"} {
		if !strings.Contains(tpl, want) {
			t.Fatalf("template missing %q:\n%s", want, tpl)
		}
	}
}
