// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"testing"
)

func TestProvider_ExplicitFileWinsOverConfigDir(t *testing.T) {
	t.Parallel()

	dirA := t.TempDir()
	writeConfig(t, dirA, `ui_backend: "from-dir"`)
	dirB := t.TempDir()
	explicit := writeConfig(t, dirB, `ui_backend: "from-flag"`)

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: explicit,
		ConfigDirPath:  dirA,
	})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Config.UIBackend != "from-flag" || loaded.Source != explicit {
		t.Errorf("Load() = %+v from %q", loaded.Config, loaded.Source)
	}
}

func TestProvider_IndependentLoads(t *testing.T) {
	t.Parallel()

	p := NewProvider()
	dir := t.TempDir()
	writeConfig(t, dir, `offline: true`)

	first, err := p.Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatal(err)
	}
	first.Config.Offline = false

	second, err := p.Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Config.Offline {
		t.Error("loads should not share state")
	}
}
