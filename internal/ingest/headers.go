package ingest

import "strings"

// NormalizeHeader lower-cases a column name and collapses internal whitespace.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// HeaderSet resolves canonical field names against the declared header row of
// an uploaded file.
type HeaderSet struct {
	headers    []string
	normalized []string
}

// NewHeaderSet captures a header row. The original spelling of every column is kept
// for error messages and raw-row capture.
func NewHeaderSet(headers []string) *HeaderSet {
	hs := &HeaderSet{
		headers:    make([]string, len(headers)),
		normalized: make([]string, len(headers)),
	}
	for i, h := range headers {
		h = cleanText(strings.TrimPrefix(h, "\ufeff"))
		hs.headers[i] = h
		hs.normalized[i] = NormalizeHeader(h)
	}
	return hs
}

// Headers returns the trimmed header row.
func (hs *HeaderSet) Headers() []string {
	return hs.headers
}

// Index returns the column index of the best header for the candidates, or -1.
// Any exact match wins over every substring match, whatever the candidate order.
func (hs *HeaderSet) Index(candidates ...string) int {
	if i := hs.ExactIndex(candidates...); i >= 0 {
		return i
	}
	for _, c := range candidates {
		c = NormalizeHeader(c)
		if c == "" {
			continue
		}
		for i, h := range hs.normalized {
			if strings.Contains(h, c) {
				return i
			}
		}
	}
	return -1
}

// ExactIndex is Index without the substring fallback.
func (hs *HeaderSet) ExactIndex(candidates ...string) int {
	for _, c := range candidates {
		c = NormalizeHeader(c)
		for i, h := range hs.normalized {
			if h == c {
				return i
			}
		}
	}
	return -1
}

// Resolve returns the header chosen for the candidates.
func (hs *HeaderSet) Resolve(candidates ...string) (string, bool) {
	i := hs.Index(candidates...)
	if i < 0 {
		return "", false
	}
	return hs.headers[i], true
}

// ResolveHeader is a one-shot Resolve over a header row.
func ResolveHeader(headers []string, candidates ...string) (string, bool) {
	return NewHeaderSet(headers).Resolve(candidates...)
}

// cell returns record[i] cleaned, or "" when the column is absent or the record is short.
func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return cleanText(record[i])
}

// cleanText trims s and drops invalid UTF-8 and NUL bytes, neither of which
// Postgres accepts in TEXT or JSONB values.
func cleanText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToValidUTF8(s, ""), "\x00", ""))
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
