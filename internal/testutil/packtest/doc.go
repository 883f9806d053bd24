// SPDX-License-Identifier: MPL-2.0

// Package packtest builds pack manifests and instances for tests.
//
// It lives apart from testutil so that packages imported by the pack and
// instance records can still use testutil without an import cycle.
//
// # Usage
//
//	inst := packtest.NewInstance("survival")
//	inst.Add(packtest.NewTestPack("core", packtest.WithSimFlags("physics")))
//	inst.Add(packtest.NewTestPack("ui", packtest.Requires("core", packtest.Any())))
//	order, err := resolver.New(inst.Store, "", nil).Resolve(inst.Manifest)
package packtest
