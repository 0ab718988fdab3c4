// Package cidr turns registry resource strings into CIDR blocks.
//
// The registry publishes IPv4 resources either as exact prefixes ("193.0.0.0/21") or as
// inclusive ranges ("193.0.0.0-193.0.7.255"). Prefixes are kept verbatim; ranges are
// summarized into the fewest aligned blocks that cover them exactly.
package cidr
