// Package signature classifies raw byte windows as a known binary file format
// or as plain text.
package signature

import (
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MinProbeLen is the shortest slice the detector will classify. Shorter
// slices never match.
const MinProbeLen = 33

// TextExt is the token returned for windows that look like plain text
const TextExt = "txt"

// Detector matches byte windows against a user catalog, then the mimetype
// magic library, then the printable-text heuristic. It holds no per-call
// state and is safe to share.
type Detector struct {
	catalog []Signature
}

// NewDetector creates a detector. Custom signatures are tried before the
// built-in library, longest magic first.
func NewDetector(custom ...Signature) *Detector {
	catalog := make([]Signature, 0, len(custom))
	for _, s := range custom {
		if len(s.Magic) == 0 || s.Ext == "" {
			continue
		}
		catalog = append(catalog, s)
	}
	sort.SliceStable(catalog, func(i, j int) bool {
		return len(catalog[i].Magic) > len(catalog[j].Magic)
	})
	return &Detector{catalog: catalog}
}

var defaultDetector = NewDetector()

// Detect classifies b with the built-in catalog only
func Detect(b []byte) string {
	return defaultDetector.Detect(b)
}

// Detect returns an extension token (without the dot) or "" for no match.
func (d *Detector) Detect(b []byte) string {
	if len(b) < MinProbeLen {
		return ""
	}

	for _, s := range d.catalog {
		if s.Match(b) {
			return s.Ext
		}
	}

	if ext := binaryExt(b); ext != "" {
		return ext
	}

	if isMostlyPrintable(b) {
		return TextExt
	}
	return ""
}

// mimeTokens names binary types mimetype knows but gives no extension
var mimeTokens = map[string]string{
	"application/x-elf":         "elf",
	"application/x-executable":  "elf",
	"application/x-object":      "elf",
	"application/x-coredump":    "elf",
	"application/x-ole-storage": "ole",
	"application/zlib":          "zlib",
	"application/tzif":          "tzif",
}

// binaryExt asks mimetype for a binary format. Text formats (anything that
// descends from text/plain) are left to the printable heuristic. A type
// without an extension borrows its nearest ancestor's, then falls back to
// mimeTokens.
func binaryExt(b []byte) string {
	m := mimetype.Detect(b)
	if m == nil || m.Is("application/octet-stream") {
		return ""
	}
	for p := m; p != nil; p = p.Parent() {
		if p.Is("text/plain") {
			return ""
		}
	}
	for p := m; p != nil && !p.Is("application/octet-stream"); p = p.Parent() {
		if ext := strings.TrimPrefix(p.Extension(), "."); ext != "" {
			return ext
		}
		if tok, ok := mimeTokens[p.String()]; ok {
			return tok
		}
	}
	return ""
}

// isMostlyPrintable reports whether more than 90% of b is printable ASCII or
// tab/LF/CR.
func isMostlyPrintable(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	printable := 0
	for _, c := range b {
		if c == 0x09 || c == 0x0A || c == 0x0D || (c >= 0x20 && c <= 0x7E) {
			printable++
		}
	}
	return printable*10 > len(b)*9
}
