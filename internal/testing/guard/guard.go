// Package guard is blank-imported by command tests so main returns before
// touching stores, Redis or network listeners.
package guard

import "os"

func init() {
	if _, ok := os.LookupEnv("RXCATALOG_TEST_MODE"); !ok {
		_ = os.Setenv("RXCATALOG_TEST_MODE", "true")
	}
}
