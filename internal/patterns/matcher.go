package patterns

import (
	"bytes"
	"strings"
)

// Matcher tests candidate addresses against optional prefix/suffix fragments.
// Fragments are compiled once (lowercased) so the hot loop is two byte-wise
// comparisons; an empty Matcher accepts every address.
type Matcher struct {
	prefix []byte
	suffix []byte
}

// New compiles a matcher. prefix is matched against the canonical lowercase
// "0x..." rendering from the front, so it should carry the 0x marker when the
// caller wants to anchor right after it; suffix is matched from the tail.
func New(prefix, suffix string) *Matcher {
	m := &Matcher{}
	if prefix != "" {
		m.prefix = []byte(strings.ToLower(prefix))
	}
	if suffix != "" {
		m.suffix = []byte(strings.ToLower(suffix))
	}
	return m
}

// Empty reports whether the matcher has no constraints.
func (m *Matcher) Empty() bool {
	return m.prefix == nil && m.suffix == nil
}

// Matches reports whether addrHex satisfies the compiled fragments. addrHex
// must already be the canonical lowercase rendering ("0x" + 40 hex chars).
func (m *Matcher) Matches(addrHex []byte) bool {
	if m.prefix != nil && !bytes.HasPrefix(addrHex, m.prefix) {
		return false
	}
	if m.suffix != nil && !bytes.HasSuffix(addrHex, m.suffix) {
		return false
	}
	return true
}

// MatchAddress is the one-off form: case-insensitive prefix/suffix test over
// the full hex rendering. Absent fragments pass; no fragments always matches.
func MatchAddress(addr, prefix, suffix string) bool {
	check := strings.ToLower(addr)
	if prefix != "" && !strings.HasPrefix(check, strings.ToLower(prefix)) {
		return false
	}
	if suffix != "" && !strings.HasSuffix(check, strings.ToLower(suffix)) {
		return false
	}
	return true
}
