package dedupe

import (
	"database/sql"
	"strconv"
	"strings"
)

// ParsedID is the result of reading an identifier as an integer. OK is false
// for NULL, blank, and non-numeric values.
type ParsedID struct {
	Value int64
	OK    bool
}

// ParseID parses the trimmed identifier as a base-10 integer.
func ParseID(raw sql.NullString) ParsedID {
	if !raw.Valid {
		return ParsedID{}
	}
	trimmed := strings.TrimSpace(raw.String)
	if trimmed == "" {
		return ParsedID{}
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return ParsedID{}
	}
	return ParsedID{Value: n, OK: true}
}

// Normalize returns the deduplication key for an identifier. Blank and NULL
// identifiers have no key and never count as duplicates.
func Normalize(raw sql.NullString) (string, bool) {
	if !raw.Valid {
		return "", false
	}
	key := strings.TrimSpace(raw.String)
	if key == "" {
		return "", false
	}
	return key, true
}
