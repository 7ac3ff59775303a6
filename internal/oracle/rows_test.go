package oracle

import (
	"database/sql"
	"testing"
)

func TestRenderCellRoundHalfUp(t *testing.T) {
	cases := []struct {
		raw    string
		dbType string
		want   string
	}{
		{"0.625", "DECIMAL", "0.63"},
		{"1.100", "DECIMAL", "1.1"},
		{"2.0", "DECIMAL", "2"},
		{"2.005", "DOUBLE", "2.01"},
		{"42", "LONG", "42"},
		{"2024-01-02", "DATE", "2024-01-02"},
		{"hello", "VARCHAR", "hello"},
	}
	for _, c := range cases {
		got := renderCell(sql.NullString{String: c.raw, Valid: true}, c.dbType)
		if got != c.want {
			t.Errorf("renderCell(%q, %q) = %q, want %q", c.raw, c.dbType, got, c.want)
		}
	}
}

func TestRenderCellNull(t *testing.T) {
	got := renderCell(sql.NullString{Valid: false}, "DECIMAL")
	if got != "NULL" {
		t.Fatalf("expected NULL, got %q", got)
	}
}

func TestFormatLinesFieldSeparatorAndHeaderRemoval(t *testing.T) {
	result := Result{
		Header: []string{"id", "name"},
		Rows: [][]string{
			{"1", "a"},
			{"2", "b"},
		},
	}
	withHeader := result.FormatLines(false)
	if len(withHeader) != 3 || withHeader[0] != "id | name" {
		t.Fatalf("unexpected lines with header: %v", withHeader)
	}
	withoutHeader := result.FormatLines(true)
	if len(withoutHeader) != 2 || withoutHeader[0] != "1 | a" {
		t.Fatalf("unexpected lines without header: %v", withoutHeader)
	}
}
