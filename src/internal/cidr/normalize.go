package cidr

import (
	"fmt"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/errors"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
)

// Result is the outcome of normalizing a batch of raw entries.
type Result struct {
	// CIDRs holds the normalized sequence in input order.
	CIDRs []string

	PassedThrough  int
	RangesExpanded int
	Dropped        int
	Ignored        int
}

// Normalize converts raw registry entries into CIDR text. See NormalizeWithStats.
func Normalize(raw []string) []string {
	return NormalizeWithStats(raw).CIDRs
}

// NormalizeWithStats converts raw registry entries into CIDR text.
//
// CIDR entries are passed through byte-identical and unvalidated. Range entries are
// expanded into aligned blocks in place. Malformed ranges are dropped: wrong arity is
// only reported at debug level, unparsable addresses are reported as warnings.
// Entries with neither separator are ignored. No error ever leaves this function.
func NormalizeWithStats(raw []string) Result {
	res := Result{CIDRs: make([]string, 0, len(raw))}

	for _, text := range raw {
		entry := ParseEntry(text)

		switch entry.Kind {
		case KindCIDR:
			res.CIDRs = append(res.CIDRs, text)
			res.PassedThrough++

		case KindRange:
			start, end := AddrToUint32(entry.Start), AddrToUint32(entry.End)
			if start > end {
				log.Warnf("Skipping range %q: start is above end", text)
				res.Dropped++
				continue
			}
			for _, block := range RangeToBlocks(start, end) {
				res.CIDRs = append(res.CIDRs, block.String())
			}
			res.RangesExpanded++

		case KindMalformed:
			if entry.BadArity {
				log.Debugf("Skipping entry: %v", entry.Err)
			} else {
				log.Warnf("Failed to process range %q: %v", text, entry.Err)
			}
			res.Dropped++

		default:
			res.Ignored++
		}
	}

	return res
}

// RangeToCIDRs parses an inclusive IPv4 range and returns its covering blocks as text.
func RangeToCIDRs(startText, endText string) ([]string, error) {
	start, err := parseIPv4(startText)
	if err != nil {
		return nil, errors.NewParseError(fmt.Sprintf("invalid start address %q", startText), err)
	}
	end, err := parseIPv4(endText)
	if err != nil {
		return nil, errors.NewParseError(fmt.Sprintf("invalid end address %q", endText), err)
	}

	blocks := RangeToBlocks(AddrToUint32(start), AddrToUint32(end))
	cidrs := make([]string, len(blocks))
	for i, block := range blocks {
		cidrs[i] = block.String()
	}
	return cidrs, nil
}
