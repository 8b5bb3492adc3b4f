package signature

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// Signature is a user supplied magic-byte rule
type Signature struct {
	Ext    string // extension token returned on match, e.g. "e01"
	Offset int    // where Magic starts inside the probed slice
	Magic  []byte
}

// Match reports whether b carries the magic at the signature's offset
func (s Signature) Match(b []byte) bool {
	end := s.Offset + len(s.Magic)
	if s.Offset < 0 || len(b) < end {
		return false
	}
	return bytes.Equal(b[s.Offset:end], s.Magic)
}

// ParseMagic decodes a hex string such as "45 56 46 09" or "0x89504e47".
func ParseMagic(s string) ([]byte, error) {
	clean := strings.ToLower(strings.TrimSpace(s))
	clean = strings.TrimPrefix(clean, "0x")
	clean = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(clean)
	if clean == "" {
		return nil, fmt.Errorf("empty magic")
	}
	magic, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("decode magic %q: %w", s, err)
	}
	return magic, nil
}
