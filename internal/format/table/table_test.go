package table

import "testing"

func TestFormatPadsColumns(t *testing.T) {
	got := Format([][]string{
		{"k", "up"},
		{"pgdown", "page down"},
	}, nil)
	want := []string{
		"k       up",
		"pgdown  page down",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFormatRightAlignAndWideRunes(t *testing.T) {
	got := Format([][]string{
		{"1", "日本"},
		{"100", "ab"},
	}, []Alignment{AlignRight, AlignLeft})
	if got[0] != "  1  日本" {
		t.Fatalf("unexpected first row %q", got[0])
	}
	if got[1] != "100  ab" {
		t.Fatalf("unexpected second row %q", got[1])
	}
}

func TestFormatEmpty(t *testing.T) {
	if Format(nil, nil) != nil {
		t.Fatalf("expected nil for no rows")
	}
}
