// Package log provides leveled logging for ripe-addrlist.
//
// It exposes printf-style package functions (Debugf, Infof, Warnf, Errorf, Fatalf)
// on top of github.com/charmbracelet/log. Debug messages are only emitted in verbose
// mode. Errors go to stderr, everything else to stdout unless SetForceStdErr is enabled.
//
// Output can additionally be mirrored into a rotated file:
//
//	log.SetLogFile(log.FileOptions{Path: "/var/log/ripe-addrlist.log", MaxSizeMB: 10})
//	log.Infof("Synchronizing list %q", name)
package log
