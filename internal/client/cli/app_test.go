package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/passgate/internal/client/client"
	"github.com/dmitrijs2005/passgate/internal/client/models"
	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/gate"
	"github.com/dmitrijs2005/passgate/internal/logging"
)

// fakeGate stands in for services.AccessGate: article "foo" is guarded by
// "hunter2", category "news" by "press". Articles "foo" and "bar" are filed
// under "news".
type fakeGate struct {
	records     map[string]models.UnlockRecord
	pingErr     error
	describeErr error
	verifies    int
	readErrs    []error
}

func newFakeGate() *fakeGate {
	return &fakeGate{records: map[string]models.UnlockRecord{}}
}

func (f *fakeGate) governing(q gate.Request) (gate.Ref, string) {
	if q.Article == "foo" {
		return gate.ArticleRef("foo"), "hunter2"
	}
	if q.Category == "news" || q.Article == "bar" {
		return gate.CategoryRef("news"), "press"
	}
	return gate.Ref{}, ""
}

func (f *fakeGate) Ping(ctx context.Context) error                 { return f.pingErr }
func (f *fakeGate) ClientID(ctx context.Context) (string, error) { return "cid", nil }
func (f *fakeGate) Close(ctx context.Context) error                { return nil }
func (f *fakeGate) List(ctx context.Context) ([]models.UnlockRecord, error) {
	out := make([]models.UnlockRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResourceKey < out[j].ResourceKey })
	return out, nil
}

func (f *fakeGate) Unlocked(ctx context.Context, q gate.Request) (*models.UnlockRecord, error) {
	if q.Article != "" {
		return f.RecordFor(ctx, gate.ArticleRef(q.Article))
	}
	return f.RecordFor(ctx, gate.CategoryRef(q.Category))
}

func (f *fakeGate) RecordFor(ctx context.Context, ref gate.Ref) (*models.UnlockRecord, error) {
	if r, ok := f.records[ref.Key()]; ok {
		return &r, nil
	}
	return nil, nil
}

func (f *fakeGate) Describe(ctx context.Context, q gate.Request) (*client.Description, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	ref, s := f.governing(q)
	return &client.Description{Ref: ref, Protected: s != "", Available: true}, nil
}

func (f *fakeGate) Verify(ctx context.Context, q gate.Request, secret []byte) (*client.VerifyOutcome, error) {
	defer common.WipeByteArray(secret)
	f.verifies++
	ref, s := f.governing(q)
	if string(secret) != s {
		return &client.VerifyOutcome{Ref: ref, Reason: gate.ReasonSecretMismatch}, nil
	}
	f.records[ref.Key()] = models.UnlockRecord{ResourceKey: ref.Key(), Unlocked: true, UnlockedAt: time.Now()}
	return &client.VerifyOutcome{Ref: ref, Allowed: true}, nil
}

func (f *fakeGate) Read(ctx context.Context, q gate.Request) ([]byte, error) {
	if len(f.readErrs) > 0 {
		err := f.readErrs[0]
		f.readErrs = f.readErrs[1:]
		if errors.Is(err, client.ErrUnauthorized) {
			ref, _ := f.governing(q)
			delete(f.records, ref.Key())
		}
		return nil, err
	}
	return []byte("# " + q.Article), nil
}

func (f *fakeGate) Forget(ctx context.Context, key string) error {
	if _, ok := f.records[key]; !ok {
		return common.ErrorNotFound
	}
	delete(f.records, key)
	return nil
}

func (f *fakeGate) ForgetAll(ctx context.Context) (int64, error) {
	n := int64(len(f.records))
	f.records = map[string]models.UnlockRecord{}
	return n, nil
}

func newTestApp(t *testing.T, g *fakeGate, input ...string) (*App, *bytes.Buffer) {
	t.Helper()
	stubTerminal(t, false)
	var out bytes.Buffer
	return &App{
		logger: logging.NewDiscardLogger(),
		gate:   g,
		reader: bufio.NewReader(strings.NewReader(strings.Join(input, "\n"))),
		out:    &out,
	}, &out
}

func TestCheckOnline_SetsMode(t *testing.T) {
	g := newFakeGate()
	app, _ := newTestApp(t, g)
	ctx := context.Background()

	app.checkOnline(ctx)
	if app.Mode != ModeOnline || app.getStatus() != "(online)" {
		t.Fatalf("expected online, got %q", app.Mode)
	}

	g.pingErr = client.ErrUnavailable
	app.checkOnline(ctx)
	if app.Mode != ModeOffline {
		t.Fatalf("expected offline, got %q", app.Mode)
	}
}

func TestGetStatus_Empty(t *testing.T) {
	app := &App{}
	if app.getStatus() != "" {
		t.Fatalf("expected empty status, got %q", app.getStatus())
	}
}
