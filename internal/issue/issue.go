// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"

	"github.com/launchgate/launchgate/pkg/handshake"
)

type Id int

const (
	MissingRequiredFieldsId Id = iota + 1
	ManifestHashMismatchId
	MissingSimAffectingPackDeclarationsId
	PackHashMismatchId
	PrelaunchValidationFailedId
	DependencyCycleId
	MissingRequiredPackId
	IncompatibleVersionId
	PackConflictId
	DuplicatePackId
	ManifestMismatchId
	ArtifactNotFoundId
	InstanceNotFoundId
	ConfigLoadFailedId
	InvalidHandshakeId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	title    string      // one-line summary for listings
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external references, may be empty
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Title() string {
	return i.title
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the guide with its "See also" section appended.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			fmt.Fprintf(&sb, "\n- <%s>", link)
		}
	}
	return sb.String()
}

func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	refusalIssues = map[handshake.RefusalCode]Id{
		handshake.RefusalMissingRequiredFields:               MissingRequiredFieldsId,
		handshake.RefusalManifestHashMismatch:                ManifestHashMismatchId,
		handshake.RefusalMissingSimAffectingPackDeclarations: MissingSimAffectingPackDeclarationsId,
		handshake.RefusalPackHashMismatch:                    PackHashMismatchId,
		handshake.RefusalPrelaunchValidationFailed:           PrelaunchValidationFailedId,
	}

	missingRequiredFieldsIssue = &Issue{
		id:    MissingRequiredFieldsId,
		title: "handshake is missing required fields",
		mdMsg: `
# Handshake is missing required fields!

The engine refused the handshake (code 1) because an identity field is empty:
the run id, instance id, instance manifest hash (32 bytes), launcher profile,
determinism profile, engine build or game build.

## Things you can try:
- Set 'launcher_profile_id' and 'determinism_profile_id' in your config
- Re-import the instance so it carries engine and game build ids
- Rebuild the handshake with 'launchgate handshake build'`,
	}

	manifestHashMismatchIssue = &Issue{
		id:    ManifestHashMismatchId,
		title: "instance manifest hash does not match",
		mdMsg: `
# Instance manifest hash mismatch!

The handshake was built against a different version of the instance manifest
(code 2). The instance changed after the handshake was written.

## Things you can try:
- Rebuild the handshake for the current instance
- Check that launcher and engine read the same state root`,
	}

	missingSimDeclarationsIssue = &Issue{
		id:    MissingSimAffectingPackDeclarationsId,
		title: "simulation-affecting packs are not declared",
		mdMsg: `
# Simulation-affecting packs are not declared!

A pack that changes simulation state is missing from the handshake, or its
declared flags are not a superset of the flags in its manifest (code 3).
The resolver may also have failed to produce a load order.

## Things you can try:
- Rebuild the handshake so every resolved pack is listed
- Run 'launchgate resolve <instance>' and fix any resolution error it reports`,
	}

	packHashMismatchIssue = &Issue{
		id:    PackHashMismatchId,
		title: "pack content hash does not match",
		mdMsg: `
# Pack hash mismatch!

An enabled pack in the handshake carries a content hash that differs from the
instance manifest (code 4). The pack was replaced or tampered with.

## Things you can try:
- Re-publish the pack with 'launchgate pack publish'
- Re-import the instance so its content entries carry the new hash`,
	}

	prelaunchFailedIssue = &Issue{
		id:    PrelaunchValidationFailedId,
		title: "prelaunch validation failed",
		mdMsg: `
# Prelaunch validation failed!

The launcher refused to start the engine (code 5). The instance could not be
resolved, or a simulation-affecting pack is not pinned to a content hash.

## Things you can try:
- Run 'launchgate resolve <instance>' to see the underlying error
- Give every pack with sim flags a content hash`,
	}

	dependencyCycleIssue = &Issue{
		id:    DependencyCycleId,
		title: "pack dependency cycle",
		mdMsg: `
# Pack dependency cycle detected!

The listed packs depend on each other, so no load order exists. Satisfied
optional dependencies order packs too, and a pack that depends on itself
forms a cycle on its own.

## Things you can try:
- Remove one 'requires' or 'optional' edge between the listed packs
- Drop any dependency a pack declares on its own id`,
	}

	missingRequiredPackIssue = &Issue{
		id:    MissingRequiredPackId,
		title: "required pack is not in the instance",
		mdMsg: `
# Required pack is missing!

A pack requires another pack that is not enabled in the instance.

## Things you can try:
- Add the required pack to the instance content list
- Enable the pack if it is listed but disabled`,
	}

	incompatibleVersionIssue = &Issue{
		id:    IncompatibleVersionId,
		title: "dependency version out of range",
		mdMsg: `
# Incompatible dependency version!

A required or optional dependency is present but its version falls outside
the declared range. Versions compare by numeric dot-separated segments.

## Things you can try:
- Install a pack version inside the range
- Widen the 'min' or 'max' bound in the dependent pack`,
		extLinks: []HttpLink{"https://semver.org"},
	}

	packConflictIssue = &Issue{
		id:    PackConflictId,
		title: "conflicting packs enabled together",
		mdMsg: `
# Conflicting packs!

Two enabled packs declare a conflict and the installed version falls inside
the conflict range.

## Things you can try:
- Disable one of the two packs
- Upgrade the conflicting pack out of the declared range`,
	}

	duplicatePackIssue = &Issue{
		id:    DuplicatePackId,
		title: "pack listed twice",
		mdMsg: `
# Duplicate pack!

The instance enables the same pack id more than once.

## Things you can try:
- Remove the duplicate content entry from 'instance.cue'`,
	}

	manifestMismatchIssue = &Issue{
		id:    ManifestMismatchId,
		title: "pack manifest disagrees with instance entry",
		mdMsg: `
# Pack manifest mismatch!

The stored pack manifest does not match the instance content entry that
points at it (id, version, type or content hash).

## Things you can try:
- Re-publish the pack and re-import the instance
- Check the entry's 'version' and 'hash' in 'instance.cue'`,
	}

	artifactNotFoundIssue = &Issue{
		id:    ArtifactNotFoundId,
		title: "pack artifact not in the store",
		mdMsg: `
# Pack artifact not found!

No artifact exists in the store for the content hash listed in the instance.

## Things you can try:
- Publish the pack with 'launchgate pack publish <pack.cue>'
- Check that '--state-root' points at the right store`,
	}

	instanceNotFoundIssue = &Issue{
		id:    InstanceNotFoundId,
		title: "instance not found",
		mdMsg: `
# Instance not found!

No instance manifest with this id exists under the state root.

## Things you can try:
- Import it with 'launchgate instance import <instance.cue>'
- Check that '--state-root' points at the right directory`,
	}

	configLoadFailedIssue = &Issue{
		id:    ConfigLoadFailedId,
		title: "config could not be loaded",
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Check the CUE syntax of your config file
- Regenerate a default with 'launchgate config init'
- Inspect the effective values with 'launchgate config show'`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	invalidHandshakeIssue = &Issue{
		id:    InvalidHandshakeId,
		title: "handshake file cannot be decoded",
		mdMsg: `
# Invalid handshake file!

The file is not a valid handshake encoding: it is truncated, has an unknown
schema version or carries a field with the wrong kind.

## Things you can try:
- Rebuild it with 'launchgate handshake build'
- Make sure the file was copied in binary mode`,
	}

	issues = map[Id]*Issue{
		missingRequiredFieldsIssue.Id():  missingRequiredFieldsIssue,
		manifestHashMismatchIssue.Id():   manifestHashMismatchIssue,
		missingSimDeclarationsIssue.Id(): missingSimDeclarationsIssue,
		packHashMismatchIssue.Id():       packHashMismatchIssue,
		prelaunchFailedIssue.Id():        prelaunchFailedIssue,
		dependencyCycleIssue.Id():        dependencyCycleIssue,
		missingRequiredPackIssue.Id():    missingRequiredPackIssue,
		incompatibleVersionIssue.Id():    incompatibleVersionIssue,
		packConflictIssue.Id():           packConflictIssue,
		duplicatePackIssue.Id():          duplicatePackIssue,
		manifestMismatchIssue.Id():       manifestMismatchIssue,
		artifactNotFoundIssue.Id():       artifactNotFoundIssue,
		instanceNotFoundIssue.Id():       instanceNotFoundIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		invalidHandshakeIssue.Id():       invalidHandshakeIssue,
	}
)

// Values returns every issue ordered by id.
func Values() []*Issue {
	v := maps.Values(issues)
	slices.SortFunc(v, func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
	return v
}

// Get returns the issue with id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// ForRefusal returns the guide for a refusal code, or nil for RefusalOK and
// unknown codes.
func ForRefusal(code handshake.RefusalCode) *Issue {
	id, ok := refusalIssues[code]
	if !ok {
		return nil
	}
	return issues[id]
}
