// Package results persists probe outcomes as an append-only two-line-record
// log and reads them back for analysis.
package results

import (
	"fmt"
	"strings"
)

// Escape encodes arbitrary diagnostic bytes as a single-line literal.
// Backslash, newline and carriage return are backslash-escaped; everything
// else passes through. Unescape inverts it exactly.
func Escape(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// Unescape decodes a line produced by Escape back into the original bytes.
func Unescape(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(s) {
			return nil, fmt.Errorf("truncated escape at end of record")
		}
		switch s[i] {
		case '\\':
			out = append(out, '\\')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		default:
			return nil, fmt.Errorf("unknown escape \\%c at offset %d", s[i], i)
		}
	}
	return out, nil
}
