package report

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Length", "Score", "Key"}
	rows := [][]string{
		{"5", "1.0712", "LEMON"},
		{"10", "0.9981", "LEMONLEMON"},
	}
	rightAlign := map[int]bool{0: true, 1: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Length   Score  Key" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "     5  1.0712  LEMON" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "    10  0.9981  LEMONLEMON" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Name", "N"}, [][]string{{"暗号", "1"}, {"ab", "22"}}, map[int]bool{1: true})
	if lines[1] != "暗号   1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "ab    22" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}
