// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that fail fast on
// setup errors and hand back cleanup functions.
//
// Environment helpers (MustSetenv, MustUnsetenv) and MustChdir mutate process
// state, so tests using them must not call t.Parallel.
package testutil
