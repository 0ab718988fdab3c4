// Package geoaudit cross-checks CIDR blocks against a GeoLite2 country database.
//
// The registry records where a block was allocated, geolocation databases record where
// it is used. A mismatch is reported for information only.
package geoaudit

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
)

// Unknown is reported for blocks the database has no country for.
const Unknown = "N/A"

// CountryLookup resolves an address to an ISO 3166-1 country code.
type CountryLookup interface {
	CountryCode(ip net.IP) (string, error)
}

// GeoIPLookup is a CountryLookup backed by a MaxMind database file.
type GeoIPLookup struct {
	db *geoip2.Reader
}

// Open opens a GeoLite2-Country or GeoIP2-Country database.
func Open(path string) (*GeoIPLookup, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database %s: %w", path, err)
	}
	log.Debugf("Opened geoip database %s (%s)", path, db.Metadata().DatabaseType)
	return &GeoIPLookup{db: db}, nil
}

// CountryCode returns the country code, falling back to the registered country.
func (g *GeoIPLookup) CountryCode(ip net.IP) (string, error) {
	record, err := g.db.Country(ip)
	if err != nil {
		return "", err
	}
	if record.Country.IsoCode != "" {
		return record.Country.IsoCode, nil
	}
	return record.RegisteredCountry.IsoCode, nil
}

func (g *GeoIPLookup) Close() error {
	return g.db.Close()
}

// Mismatch is a block located outside the requested country.
type Mismatch struct {
	CIDR    string `json:"cidr"`
	Country string `json:"country"`
}

// Report summarizes an audit.
type Report struct {
	Country    string     `json:"country"`
	Checked    int        `json:"checked"`
	Matched    int        `json:"matched"`
	Unknown    int        `json:"unknown"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// MatchRatio returns the share of located blocks that match the country.
func (r *Report) MatchRatio() float64 {
	located := r.Matched + len(r.Mismatches)
	if located == 0 {
		return 0
	}
	return float64(r.Matched) / float64(located)
}

// Audit looks up the network address of every block. Unparsable blocks and failed
// lookups count as unknown.
func Audit(lookup CountryLookup, country string, cidrs []string) *Report {
	country = strings.ToUpper(country)
	report := &Report{Country: country}

	for _, cidr := range cidrs {
		report.Checked++

		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			log.Debugf("Skipping unparsable block %q: %v", cidr, err)
			report.Unknown++
			continue
		}

		code, err := lookup.CountryCode(net.IP(prefix.Masked().Addr().AsSlice()))
		if err != nil || code == "" {
			report.Unknown++
			continue
		}

		if strings.EqualFold(code, country) {
			report.Matched++
			continue
		}
		report.Mismatches = append(report.Mismatches, Mismatch{CIDR: cidr, Country: strings.ToUpper(code)})
	}

	return report
}

// LogReport writes a short summary and the first mismatches as warnings.
func LogReport(report *Report, limit int) {
	log.Infof("Geo audit: %d checked, %d in %s, %d elsewhere, %d unknown",
		report.Checked, report.Matched, report.Country, len(report.Mismatches), report.Unknown)

	for i, m := range report.Mismatches {
		if limit > 0 && i >= limit {
			log.Warnf("... and %d more", len(report.Mismatches)-limit)
			break
		}
		log.Warnf("%s is located in %s", m.CIDR, m.Country)
	}
}
