//go:build !windows

package app

import "os"

var processEUID = os.Geteuid

// RunningAsRoot reports whether the agent would execute commands with root
// privileges. The CLI warns in that case since every confirmed command runs
// unrestricted.
func RunningAsRoot() bool {
	return processEUID() == 0
}
