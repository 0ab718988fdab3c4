package cidr

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/errors"
)

// EntryKind classifies a raw registry resource string.
type EntryKind int

const (
	// KindUnknown is an entry with neither a "/" nor a "-" separator. It is ignored.
	KindUnknown EntryKind = iota
	// KindCIDR is an entry in a.b.c.d/n notation, passed through unchanged.
	KindCIDR
	// KindRange is an inclusive start-end IPv4 range.
	KindRange
	// KindMalformed is a range entry that cannot be used.
	KindMalformed
)

func (k EntryKind) String() string {
	switch k {
	case KindCIDR:
		return "cidr"
	case KindRange:
		return "range"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// RawEntry is a classified registry resource string.
type RawEntry struct {
	Kind  EntryKind
	Text  string
	Start netip.Addr
	End   netip.Addr
	// Err is set for KindMalformed entries.
	Err *errors.Error
	// BadArity marks a range that did not split into exactly two parts.
	BadArity bool
}

// ParseEntry classifies a raw resource string. A "/" takes precedence over "-".
func ParseEntry(text string) RawEntry {
	entry := RawEntry{Kind: KindUnknown, Text: text}

	switch {
	case strings.Contains(text, "/"):
		entry.Kind = KindCIDR
	case strings.Contains(text, "-"):
		parts := strings.Split(text, "-")
		if len(parts) != 2 {
			entry.Kind = KindMalformed
			entry.BadArity = true
			entry.Err = errors.NewParseError(
				fmt.Sprintf("range %q has %d parts, expected 2", text, len(parts)), nil)
			return entry
		}

		start, err := parseIPv4(parts[0])
		if err != nil {
			entry.Kind = KindMalformed
			entry.Err = errors.NewParseError(fmt.Sprintf("invalid range start in %q", text), err)
			return entry
		}
		end, err := parseIPv4(parts[1])
		if err != nil {
			entry.Kind = KindMalformed
			entry.Err = errors.NewParseError(fmt.Sprintf("invalid range end in %q", text), err)
			return entry
		}

		entry.Kind = KindRange
		entry.Start = start
		entry.End = end
	}

	return entry
}

func parseIPv4(text string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(text)
	if err != nil {
		return netip.Addr{}, err
	}
	if !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("%s is not an IPv4 address", addr)
	}
	return addr, nil
}
