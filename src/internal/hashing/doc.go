// Package hashing provides MD5 checksums of registry responses and CIDR sets.
//
// ChecksumReaderProxy hashes a stream while it is consumed, so a response body can be
// decoded and fingerprinted in one pass:
//
//	proxy := hashing.NewMD5ReaderProxy(resp.Body)
//	err := json.NewDecoder(proxy).Decode(&payload)
//	log.Debugf("Downloaded %d bytes, MD5: %s", proxy.BytesRead(), proxy.Checksum())
//
// Fingerprint identifies a set of CIDR blocks independent of order, which lets the
// service skip synchronizing a list that did not change.
package hashing
