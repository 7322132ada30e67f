//go:build !unix

package store

import "os"

// Without flock the atomic rename in config.Save is the only protection.
func lockFile(*os.File) error   { return nil }
func unlockFile(*os.File) error { return nil }
