// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"github.com/launchgate/launchgate/internal/dag"
	"github.com/launchgate/launchgate/internal/issue"
	"github.com/launchgate/launchgate/internal/resolver"
	"github.com/launchgate/launchgate/pkg/handshake"
	"github.com/launchgate/launchgate/pkg/instance"
)

// classifyError maps a command failure to an issue catalog ID, or 0 when
// no guide applies. Resolution causes win over the refusal wrapping them.
func classifyError(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		if guide := ae.Issue(); guide != nil {
			return guide.Id()
		}
	}

	switch {
	case errors.Is(err, dag.ErrCycle):
		return issue.DependencyCycleId
	case errors.Is(err, resolver.ErrMissingRequiredPack):
		return issue.MissingRequiredPackId
	case errors.Is(err, resolver.ErrIncompatibleVersion):
		return issue.IncompatibleVersionId
	case errors.Is(err, resolver.ErrConflict):
		return issue.PackConflictId
	case errors.Is(err, resolver.ErrDuplicatePack):
		return issue.DuplicatePackId
	case errors.Is(err, resolver.ErrManifestMismatch):
		return issue.ManifestMismatchId
	case errors.Is(err, resolver.ErrArtifact):
		return issue.ArtifactNotFoundId
	case errors.Is(err, instance.ErrInstanceNotFound):
		return issue.InstanceNotFoundId
	}

	var refusal *handshake.RefusalError
	if errors.As(err, &refusal) {
		if guide := issue.ForRefusal(refusal.Code); guide != nil {
			return guide.Id()
		}
	}
	return 0
}
