package hashing

import (
	"crypto/md5"
	"encoding/hex"
	"slices"
)

// Fingerprint returns the MD5 of the set of entries. It ignores order and duplicates,
// so two fetches yielding the same blocks in a different order share a fingerprint.
func Fingerprint(entries []string) string {
	sorted := slices.Clone(entries)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	sum := md5.New()
	for _, entry := range sorted {
		sum.Write([]byte(entry))
		sum.Write([]byte{'\n'})
	}
	return hex.EncodeToString(sum.Sum(nil))
}
