// SPDX-License-Identifier: MPL-2.0

package handshake

import (
	"testing"
)

func TestIdentityHashDeterministic(t *testing.T) {
	t.Parallel()

	if IdentityHash(testHandshake()) != IdentityHash(testHandshake()) {
		t.Fatal("identical handshakes fingerprint differently")
	}
}

func TestIdentityHashIgnoresCosmeticFields(t *testing.T) {
	t.Parallel()

	base := IdentityHash(testHandshake())
	mutations := map[string]func(h *Handshake){
		"run id":     func(h *Handshake) { h.RunID++ },
		"profiles":   func(h *Handshake) { h.LauncherProfileID, h.DeterminismProfileID = "other", "other" },
		"backends":   func(h *Handshake) { h.PlatformBackends, h.RendererBackends, h.UIBackend = nil, []string{"metal"}, "" },
		"timestamps": func(h *Handshake) { h.TimestampMonotonicUS, h.TimestampWallUS = 1, 2 },
		"perf caps":  func(h *Handshake) { h.PerfCaps = PerfCaps{WorkerThreads: 1}.Encode() },
		"safe mode":  func(h *Handshake) { h.ResolvedPacks[0].SafeModeFlags = []string{"x"} },
		"flag order": func(h *Handshake) { h.ResolvedPacks[1].SimAffectingFlags = []string{"rng", "ai"} },
		"disabled":   func(h *Handshake) { h.ResolvedPacks = append(h.ResolvedPacks, PackEntry{PackID: "off", Version: "1"}) },
	}
	for name, mutate := range mutations {
		h := testHandshake()
		mutate(h)
		if IdentityHash(h) != base {
			t.Errorf("%s changed the fingerprint", name)
		}
	}
}

func TestIdentityHashSensitiveToSimState(t *testing.T) {
	t.Parallel()

	base := IdentityHash(testHandshake())
	mutations := map[string]func(h *Handshake){
		"sim caps":      func(h *Handshake) { h.SimCaps = SimCaps{TickRateHz: 30}.Encode() },
		"epoch":         func(h *Handshake) { v := uint32(5); h.FeatureEpoch = &v },
		"epoch removed": func(h *Handshake) { h.FeatureEpoch = nil },
		"provider":      func(h *Handshake) { v := uint64(1); h.ProviderBindingsHash = &v },
		"coredata":      func(h *Handshake) { v := uint64(7); h.CoredataSimHash = &v },
		"pack order":    func(h *Handshake) { h.ResolvedPacks[0], h.ResolvedPacks[1] = h.ResolvedPacks[1], h.ResolvedPacks[0] },
		"pack version":  func(h *Handshake) { h.ResolvedPacks[0].Version = "2.0.1" },
		"pack hash":     func(h *Handshake) { h.ResolvedPacks[0].HashBytes = []byte{9} },
		"pack flag":     func(h *Handshake) { h.ResolvedPacks[1].SimAffectingFlags = []string{"ai"} },
		"pack disabled": func(h *Handshake) { h.ResolvedPacks[0].Enabled = false },
	}
	for name, mutate := range mutations {
		h := testHandshake()
		mutate(h)
		if IdentityHash(h) == base {
			t.Errorf("%s did not change the fingerprint", name)
		}
	}
}
