// Package remote delivers commands to the managed device over SSH.
//
// Two Channel implementations exist: ExecChannel shells out to the system ssh client
// (batch mode, no host key checking), NativeChannel speaks SSH in-process through
// golang.org/x/crypto/ssh. Both open a fresh session for every call and report
// transport failures as CONNECTION_ERROR, leaving exit status interpretation to callers.
package remote
