// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown guides.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for the user. The catalog maps each refusal code and each
// resolution failure to a guide rendered with glamour.
package issue
