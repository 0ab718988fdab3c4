// Package addrlist keeps a RouterOS firewall address-list in sync with a set of CIDR
// blocks.
//
// A run moves through Idle, Clearing, then Adding and Pausing for every batch, and ends
// in Completed or Failed:
//
//	sync := addrlist.New(channel, addrlist.DefaultOptions())
//	report, err := sync.Synchronize(ctx, addrlist.Target{Endpoint: ep, ListName: "RU"}, cidrs)
//
// There is no rollback: when batch N fails, batches 1..N-1 remain on the device and the
// report says so.
package addrlist
