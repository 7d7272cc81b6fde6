// SPDX-License-Identifier: MPL-2.0

package testutil

import "testing"

// SetConfigHome points XDG_CONFIG_HOME at dir and returns a cleanup function
// that restores the original value.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(testutil.SetConfigHome(t, t.TempDir()))
//
//	    // Test code that reads the user configuration...
//	}
func SetConfigHome(t testing.TB, dir string) func() {
	t.Helper()
	return MustSetenv(t, "XDG_CONFIG_HOME", dir)
}
