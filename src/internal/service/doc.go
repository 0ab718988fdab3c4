// Package service provides business logic orchestration for ripe-addrlist.
//
// The service layer sits between commands (CLI controllers, scheduler, status API) and
// the domain packages. SyncService runs one pipeline:
//
//  1. fetch the country's IPv4 resources from the registry
//  2. normalize them into CIDR blocks
//  3. fingerprint the set, optionally skipping an unchanged one
//  4. cross-check the blocks against a geolocation database (advisory)
//  5. replace the remote address-list in paced batches
//
// Runs are serialized; TryRun lets callers like the status API refuse instead of queueing.
package service
