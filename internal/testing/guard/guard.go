// Package guard flips the runtime into test mode when imported from tests, so
// package init paths never start servers or workers under `go test`.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("DENTEX_TEST_MODE") == "" {
			_ = os.Setenv("DENTEX_TEST_MODE", "1")
		}
	})
}
