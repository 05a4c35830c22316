// Package signature deduplicates crash diagnostics by their stack-frame
// symbol sequence.
package signature

import "strings"

// Signature is the ordered sequence of stack-frame symbols extracted from
// one diagnostic. Two crashes with the same Signature are treated as the
// same underlying failure. The empty sequence is itself a valid signature.
type Signature []string

// Key returns a string form usable as a map key. Frame symbols never
// contain the unit separator, so the encoding is injective.
func (s Signature) Key() string {
	return strings.Join(s, "\x1f")
}

// String renders the signature for human consumption.
func (s Signature) String() string {
	if len(s) == 0 {
		return "(no recognizable frames)"
	}
	return strings.Join(s, " > ")
}

// Extract scans a diagnostic line by line and collects the frame symbol
// from every line shaped like "#<n> 0x<hex> <symbol>", in order of
// appearance. Lines without a recognizable frame are skipped; a diagnostic
// with none yields the empty signature.
func Extract(diagnostic []byte) Signature {
	var sig Signature
	for line := range strings.Lines(string(diagnostic)) {
		if sym, ok := scanFrame(line); ok {
			sig = append(sig, sym)
		}
	}
	return sig
}

// scanFrame finds the first stack-frame pattern in the line and returns its
// symbol token. The grammar, matched at any position:
//
//	'#' digit+ ws+ '0x' lowerhex+ ws+ symbol+
//
// where symbol characters are letters, digits, underscore, colon and tilde.
func scanFrame(line string) (string, bool) {
	for start := 0; start < len(line); start++ {
		if line[start] != '#' {
			continue
		}
		if sym, ok := scanFrameAt(line[start+1:]); ok {
			return sym, true
		}
	}
	return "", false
}

func scanFrameAt(s string) (string, bool) {
	i := 0

	// frame number
	n := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		n++
	}
	if n == 0 {
		return "", false
	}

	if i = skipSpace(s, i); i < 0 {
		return "", false
	}

	// hex address
	if !strings.HasPrefix(s[i:], "0x") {
		return "", false
	}
	i += 2
	n = 0
	for i < len(s) && isLowerHex(s[i]) {
		i++
		n++
	}
	if n == 0 {
		return "", false
	}

	if i = skipSpace(s, i); i < 0 {
		return "", false
	}

	// symbol
	start := i
	for i < len(s) && isSymbolChar(s[i]) {
		i++
	}
	if i == start {
		return "", false
	}
	return s[start:i], true
}

// skipSpace consumes one or more spaces or tabs; returns -1 if none found.
func skipSpace(s string, i int) int {
	n := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
		n++
	}
	if n == 0 {
		return -1
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLowerHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

func isSymbolChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c) ||
		c == '_' || c == ':' || c == '~'
}
