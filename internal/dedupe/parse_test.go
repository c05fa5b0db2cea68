package dedupe_test

import (
	"database/sql"
	"testing"

	"idmend/internal/dedupe"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name string
		raw  sql.NullString
		want dedupe.ParsedID
	}{
		{name: "plain", raw: valid("10"), want: dedupe.ParsedID{Value: 10, OK: true}},
		{name: "padded", raw: valid("  42 "), want: dedupe.ParsedID{Value: 42, OK: true}},
		{name: "signed", raw: valid("-5"), want: dedupe.ParsedID{Value: -5, OK: true}},
		{name: "leading zeros", raw: valid("007"), want: dedupe.ParsedID{Value: 7, OK: true}},
		{name: "letters", raw: valid("abc")},
		{name: "mixed", raw: valid("12a")},
		{name: "fraction", raw: valid("1.5")},
		{name: "blank", raw: valid("   ")},
		{name: "empty", raw: valid("")},
		{name: "null", raw: sql.NullString{}},
		{name: "out of range", raw: valid("9223372036854775808")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dedupe.ParseID(tt.raw); got != tt.want {
				t.Fatalf("ParseID(%q) = %+v, want %+v", tt.raw.String, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw    sql.NullString
		want   string
		wantOK bool
	}{
		{raw: valid("10"), want: "10", wantOK: true},
		{raw: valid(" 10\t"), want: "10", wantOK: true},
		{raw: valid("abc"), want: "abc", wantOK: true},
		{raw: valid("A-1 b"), want: "A-1 b", wantOK: true},
		{raw: valid("  ")},
		{raw: valid("")},
		{raw: sql.NullString{}},
	}
	for _, tt := range tests {
		got, ok := dedupe.Normalize(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("Normalize(%q) = (%q, %v), want (%q, %v)", tt.raw.String, got, ok, tt.want, tt.wantOK)
		}
	}
}

func valid(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
