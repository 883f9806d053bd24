// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMustSetenvRestores(t *testing.T) {
	const key = "LAUNCHGATE_TESTUTIL_PROBE"

	restore := MustSetenv(t, key, "one")
	if got := os.Getenv(key); got != "one" {
		t.Fatalf("Getenv = %q", got)
	}
	restore()
	if _, ok := os.LookupEnv(key); ok {
		t.Error("variable should be unset after restore")
	}
}

func TestMustUnsetenvRestores(t *testing.T) {
	const key = "LAUNCHGATE_TESTUTIL_PROBE"

	defer MustSetenv(t, key, "kept")()
	restore := MustUnsetenv(t, key)
	if _, ok := os.LookupEnv(key); ok {
		t.Fatal("variable should be unset")
	}
	restore()
	if got := os.Getenv(key); got != "kept" {
		t.Errorf("Getenv = %q, want kept", got)
	}
}

func TestMustChdirAndWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := MustWriteFile(t, dir, "probe.txt", "hello")
	if path != filepath.Join(dir, "probe.txt") {
		t.Errorf("path = %q", path)
	}

	restore := MustChdir(t, dir)
	data, err := os.ReadFile("probe.txt")
	restore()
	if err != nil || string(data) != "hello" {
		t.Errorf("ReadFile = %q, %v", data, err)
	}
}
