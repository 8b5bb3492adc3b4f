package scanner

import (
	"crypto/md5"
	"crypto/sha1"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DigestKind selects the checksum reported for each carved file
type DigestKind string

const (
	DigestNone  DigestKind = ""
	DigestMD5   DigestKind = "md5"
	DigestSHA1  DigestKind = "sha1"
	DigestXXH64 DigestKind = "xxh64"
)

// ParseDigest accepts md5, sha1, xxh64 or an empty string (case-insensitive)
func ParseDigest(s string) (DigestKind, error) {
	switch k := DigestKind(strings.ToLower(strings.TrimSpace(s))); k {
	case DigestNone, DigestMD5, DigestSHA1, DigestXXH64:
		return k, nil
	default:
		return DigestNone, fmt.Errorf("unsupported digest %q (want md5, sha1 or xxh64)", s)
	}
}

// Sum returns the hex digest of data, or "" for DigestNone
func (k DigestKind) Sum(data []byte) string {
	switch k {
	case DigestMD5:
		return fmt.Sprintf("%x", md5.Sum(data))
	case DigestSHA1:
		return fmt.Sprintf("%x", sha1.Sum(data))
	case DigestXXH64:
		return fmt.Sprintf("%016x", xxhash.Sum64(data))
	default:
		return ""
	}
}
