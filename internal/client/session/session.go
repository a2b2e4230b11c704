// Package session drives the per-resource gate state machine of the reader.
//
//	LOCKED --open--> UNLOCKED | PROMPTING | UNAVAILABLE
//	PROMPTING --submit--> UNLOCKED (allowed) | PROMPTING (denied)
//	PROMPTING, UNAVAILABLE --cancel--> LOCKED
//	UNAVAILABLE --open--> retry
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passgate/internal/client/client"
	"github.com/dmitrijs2005/passgate/internal/client/models"
	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/gate"
)

type State int

const (
	Locked State = iota
	Prompting
	Unlocked
	Unavailable
)

func (s State) String() string {
	switch s {
	case Locked:
		return "LOCKED"
	case Prompting:
		return "PROMPTING"
	case Unlocked:
		return "UNLOCKED"
	case Unavailable:
		return "UNAVAILABLE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var ErrInvalidTransition = errors.New("invalid transition")

const (
	RateLimitedMessage = "too many attempts, please wait and try again"
	UnavailableMessage = "the protected content cannot be checked right now"
)

// Gate is the subset of the reader's access gate a session needs.
type Gate interface {
	Unlocked(ctx context.Context, q gate.Request) (*models.UnlockRecord, error)
	RecordFor(ctx context.Context, ref gate.Ref) (*models.UnlockRecord, error)
	Describe(ctx context.Context, q gate.Request) (*client.Description, error)
	Verify(ctx context.Context, q gate.Request, secret []byte) (*client.VerifyOutcome, error)
}

// Hooks are invoked on the matching transitions. Nil hooks are skipped.
type Hooks struct {
	OnVerify func()
	OnCancel func()
}

type Session struct {
	gate    Gate
	req     gate.Request
	hooks   Hooks
	state   State
	ref     gate.Ref
	message string
}

func New(g Gate, q gate.Request, hooks Hooks) *Session {
	return &Session{gate: g, req: q, hooks: hooks, state: Locked}
}

func (s *Session) State() State { return s.state }

// Message is the text to show the reader in the current state, if any.
func (s *Session) Message() string { return s.message }

// Resource is the governing resource once the server has named it.
func (s *Session) Resource() gate.Ref { return s.ref }

func (s *Session) Request() gate.Request { return s.req }

// Open decides how the resource is presented. A record for the request's
// own resource wins without asking the server. Any other record counts only
// once the server names its resource as the governing one.
func (s *Session) Open(ctx context.Context) (State, error) {
	switch s.state {
	case Locked, Unavailable:
	case Unlocked:
		return s.state, nil
	default:
		return s.state, fmt.Errorf("%w: open in %s", ErrInvalidTransition, s.state)
	}

	rec, err := s.gate.Unlocked(ctx, s.req)
	if err != nil {
		return s.state, err
	}
	if rec != nil {
		s.set(Unlocked, "")
		return s.state, nil
	}

	d, err := s.gate.Describe(ctx, s.req)
	switch {
	case errors.Is(err, client.ErrUnavailable):
		s.set(Unavailable, UnavailableMessage)
		return s.state, nil
	case err != nil:
		return s.state, err
	}

	s.ref = d.Ref
	switch {
	case !d.Available:
		s.set(Unavailable, UnavailableMessage)
		return s.state, nil
	case !d.Protected:
		s.set(Unlocked, "")
		return s.state, nil
	}

	rec, err = s.gate.RecordFor(ctx, d.Ref)
	if err != nil {
		return s.state, err
	}
	if rec != nil {
		s.set(Unlocked, "")
	} else {
		s.set(Prompting, "")
	}
	return s.state, nil
}

// Submit checks one candidate. secret is wiped before Submit returns.
func (s *Session) Submit(ctx context.Context, secret []byte) (State, error) {
	defer common.WipeByteArray(secret)

	if s.state != Prompting {
		return s.state, fmt.Errorf("%w: submit in %s", ErrInvalidTransition, s.state)
	}

	out, err := s.gate.Verify(ctx, s.req, secret)
	switch {
	case errors.Is(err, common.ErrorNotGated):
		s.set(Unlocked, "")
		return s.state, nil
	case errors.Is(err, client.ErrUnavailable):
		s.set(Unavailable, UnavailableMessage)
		return s.state, nil
	case err != nil:
		return s.state, err
	}

	if out.Allowed {
		s.ref = out.Ref
		s.set(Unlocked, "")
		if s.hooks.OnVerify != nil {
			s.hooks.OnVerify()
		}
		return s.state, nil
	}

	if out.Reason == gate.ReasonRateLimited {
		s.message = RateLimitedMessage
	} else {
		s.message = common.RetryMessage
	}
	return s.state, nil
}

// Cancel abandons the prompt. Nothing typed so far is recorded.
func (s *Session) Cancel() (State, error) {
	if s.state != Prompting && s.state != Unavailable {
		return s.state, fmt.Errorf("%w: cancel in %s", ErrInvalidTransition, s.state)
	}

	s.set(Locked, "")
	if s.hooks.OnCancel != nil {
		s.hooks.OnCancel()
	}
	return s.state, nil
}

func (s *Session) set(st State, msg string) {
	s.state = st
	s.message = msg
}
