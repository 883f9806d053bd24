// SPDX-License-Identifier: MPL-2.0

package prelaunch

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/launchgate/launchgate/pkg/handshake"
	"github.com/launchgate/launchgate/pkg/instance"
	"github.com/launchgate/launchgate/pkg/pack"
)

type (
	// Observer receives pipeline outcomes. *metrics.Recorder satisfies it.
	Observer interface {
		ObserveResolution(packs int, err error)
		ObserveRefusal(code handshake.RefusalCode)
	}

	// Pipeline prepares a launch: resolve, check simulation safety, build the
	// handshake and validate the encoded bytes exactly as the engine will see
	// them.
	Pipeline struct {
		Resolver  Resolver
		Validator *Validator
		// Observer is optional.
		Observer Observer
		// Logger receives debug output. Nil discards.
		Logger *slog.Logger
	}

	// Prepared is a handshake that passed validation.
	Prepared struct {
		Packs       []pack.ResolvedPack
		Handshake   *handshake.Handshake
		Encoded     []byte
		Fingerprint uint64
	}
)

// NewPipeline returns a Pipeline whose validator shares r.
func NewPipeline(r Resolver, observer Observer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		Resolver:  r,
		Validator: NewValidator(r, logger),
		Observer:  observer,
		Logger:    logger,
	}
}

// Prepare returns a validated handshake for m, or an error. Any failure before
// the handshake is built is reported as a PrelaunchValidationFailed refusal
// wrapping the cause; a failing self-check returns the validator's refusal.
func (p *Pipeline) Prepare(m *instance.Manifest, caps handshake.Caps, ids handshake.Identity) (*Prepared, error) {
	packs, err := p.Resolver.ValidateSimulationSafety(m)
	p.observeResolution(len(packs), err)
	if err != nil {
		return nil, p.refuse(&handshake.RefusalError{
			Code:   handshake.RefusalPrelaunchValidationFailed,
			Reason: "instance failed prelaunch validation",
			Err:    err,
		})
	}

	h := handshake.Build(packs, m, caps, ids)
	encoded := handshake.Encode(h)
	decoded, err := handshake.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("re-reading built handshake: %w", err)
	}

	if res := p.validator().Validate(decoded, m); !res.OK() {
		var refusal *handshake.RefusalError
		errors.As(res.AsError(), &refusal)
		return nil, p.refuse(refusal)
	}

	fp := handshake.IdentityHash(decoded)
	p.logger().Debug("handshake prepared",
		"instance", m.InstanceID, "run_id", decoded.RunID, "packs", len(packs), "fingerprint", fmt.Sprintf("%016x", fp))
	return &Prepared{Packs: packs, Handshake: decoded, Encoded: encoded, Fingerprint: fp}, nil
}

func (p *Pipeline) refuse(err *handshake.RefusalError) error {
	if p.Observer != nil {
		p.Observer.ObserveRefusal(err.Code)
	}
	return err
}

func (p *Pipeline) observeResolution(n int, err error) {
	if p.Observer != nil {
		p.Observer.ObserveResolution(n, err)
	}
}

func (p *Pipeline) validator() *Validator {
	if p.Validator == nil {
		return NewValidator(p.Resolver, p.Logger)
	}
	return p.Validator
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}
