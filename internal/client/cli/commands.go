package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/passgate/internal/client/client"
	"github.com/dmitrijs2005/passgate/internal/client/session"
	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/gate"
)

var errUsage = errors.New("usage")

func articleRequest(args []string) (gate.Request, error) {
	switch len(args) {
	case 1:
		return gate.Request{Article: args[0]}, nil
	case 2:
		return gate.Request{Article: args[0], Category: args[1]}, nil
	default:
		return gate.Request{}, fmt.Errorf("%w: <slug> [category]", errUsage)
	}
}

// unlock runs a gate session for q until it settles outside PROMPTING.
// An empty password cancels the prompt.
func (a *App) unlock(ctx context.Context, q gate.Request) (session.State, error) {
	s := session.New(a.gate, q, session.Hooks{
		OnVerify: func() { fmt.Fprintln(a.out, "Password accepted.") },
		OnCancel: func() { fmt.Fprintln(a.out, "Cancelled.") },
	})

	st, err := s.Open(ctx)
	if err != nil {
		return st, err
	}

	if st == session.Prompting {
		fmt.Fprintf(a.out, "%s is password protected.\n", s.Resource())
	}

	for st == session.Prompting {
		pw, err := GetPassword(a.reader, a.out)
		if err != nil {
			_, _ = s.Cancel()
			return session.Locked, err
		}

		if len(pw) == 0 {
			st, err = s.Cancel()
			if err != nil {
				return st, err
			}
			break
		}

		st, err = s.Submit(ctx, pw)
		if err != nil {
			return st, err
		}
		if msg := s.Message(); st == session.Prompting && msg != "" {
			fmt.Fprintln(a.out, msg)
		}
	}

	if st == session.Unavailable {
		fmt.Fprintln(a.out, s.Message())
		a.checkOnline(ctx)
	}

	a.logger.Debug(ctx, "gate session settled", "request", q, "state", st.String())
	return st, nil
}

func (a *App) open(ctx context.Context, q gate.Request) error {
	st, err := a.unlock(ctx, q)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, st)
	return nil
}

// Article opens an article, prompting for its password when it is gated.
func (a *App) Article(ctx context.Context, args []string) error {
	q, err := articleRequest(args)
	if err != nil {
		return err
	}
	return a.open(ctx, q)
}

// Category opens a whole category.
func (a *App) Category(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: category <name>", errUsage)
	}
	return a.open(ctx, gate.Request{Category: args[0]})
}

// Read unlocks an article and prints its body. A record whose token the
// server no longer accepts has already been dropped by the gate, so the
// reader is prompted once more.
func (a *App) Read(ctx context.Context, args []string) error {
	q, err := articleRequest(args)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < 2; attempt++ {
		st, err := a.unlock(ctx, q)
		if err != nil {
			return err
		}
		if st != session.Unlocked {
			fmt.Fprintln(a.out, st)
			return nil
		}

		body, err := a.gate.Read(ctx, q)
		if errors.Is(err, client.ErrUnauthorized) {
			a.logger.Info(ctx, "unlock no longer valid", "request", q)
			continue
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(a.out, string(body))
		return nil
	}

	return client.ErrUnauthorized
}

// Unlocked lists the local unlock records.
func (a *App) Unlocked(ctx context.Context) error {
	recs, err := a.gate.List(ctx)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "Nothing unlocked.")
		return nil
	}
	for _, r := range recs {
		fmt.Fprintf(a.out, "%s\t%s\n", r.ResourceKey, r.UnlockedAt.Local().Format(time.DateTime))
	}
	return nil
}

func (a *App) Forget(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: forget <key>", errUsage)
	}
	err := a.gate.Forget(ctx, args[0])
	if errors.Is(err, common.ErrorNotFound) {
		fmt.Fprintf(a.out, "%s is not unlocked.\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s locked.\n", args[0])
	return nil
}

// ForgetAll drops every unlock record after confirmation.
func (a *App) ForgetAll(ctx context.Context) error {
	answer, err := GetSimpleText(a.reader, "Lock everything again? (yes/no)", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		return nil
	}

	n, err := a.gate.ForgetAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d unlock record(s) removed.\n", n)
	return nil
}
