// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for launchgate.
//
// The command tree publishes packs, imports instances, resolves load orders
// and builds, validates and inspects launch handshakes. Every handler
// receives an App holding the config provider and output streams.
package cmd
