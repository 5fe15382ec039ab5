package app

import (
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"
)

const testModeEnv = "BACKOFFICE_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

// detectTestMode reads the BACKOFFICE_TEST_MODE flag once.
func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode reports whether the application should skip runtime side effects.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode updates the cached flag after environment changes.
func RefreshTestMode() {
	detectTestMode()
}

// PasswordHashCost returns the bcrypt cost for new password hashes. Test
// mode uses the minimum cost.
func PasswordHashCost() int {
	if InTestMode() {
		return bcrypt.MinCost
	}
	return bcrypt.DefaultCost
}
