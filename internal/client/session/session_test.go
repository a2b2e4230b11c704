package session

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/passgate/internal/client/client"
	"github.com/dmitrijs2005/passgate/internal/client/models"
	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGate keeps unlock records in a map and checks secrets against a
// fixed table keyed by the governing ref. Articles listed in categories
// take their category from there, as the server does.
type fakeGate struct {
	secrets     map[gate.Ref]string
	categories  map[string]string
	records     map[string]*models.UnlockRecord
	describeErr error
	verifyErr   error
	unavailable bool
	rateLimited bool
	describes   int
}

func newFakeGate() *fakeGate {
	return &fakeGate{
		secrets: map[gate.Ref]string{
			gate.ArticleRef("foo"):   "hunter2",
			gate.CategoryRef("news"): "press",
		},
		categories: map[string]string{"foo": "news", "bar": "news"},
		records:    map[string]*models.UnlockRecord{},
	}
}

func (f *fakeGate) governing(q gate.Request) (gate.Ref, string) {
	if s, ok := f.secrets[gate.ArticleRef(q.Article)]; ok && q.Article != "" {
		return gate.ArticleRef(q.Article), s
	}
	category := q.Category
	if c, ok := f.categories[q.Article]; ok {
		category = c
	}
	if s, ok := f.secrets[gate.CategoryRef(category)]; ok && category != "" {
		return gate.CategoryRef(category), s
	}
	return gate.Ref{}, ""
}

func (f *fakeGate) Unlocked(ctx context.Context, q gate.Request) (*models.UnlockRecord, error) {
	switch {
	case q.Article != "":
		return f.RecordFor(ctx, gate.ArticleRef(q.Article))
	case q.Category != "":
		return f.RecordFor(ctx, gate.CategoryRef(q.Category))
	}
	return nil, nil
}

func (f *fakeGate) RecordFor(ctx context.Context, ref gate.Ref) (*models.UnlockRecord, error) {
	return f.records[ref.Key()], nil
}

func (f *fakeGate) Describe(ctx context.Context, q gate.Request) (*client.Description, error) {
	f.describes++
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	ref, s := f.governing(q)
	return &client.Description{Ref: ref, Protected: s != "", Available: !f.unavailable}, nil
}

func (f *fakeGate) Verify(ctx context.Context, q gate.Request, secret []byte) (*client.VerifyOutcome, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	ref, s := f.governing(q)
	if s == "" {
		return nil, common.ErrorNotGated
	}
	if f.rateLimited {
		return &client.VerifyOutcome{Ref: ref, Reason: gate.ReasonRateLimited}, nil
	}
	if string(secret) != s {
		return &client.VerifyOutcome{Ref: ref, Reason: gate.ReasonSecretMismatch}, nil
	}
	f.records[ref.Key()] = &models.UnlockRecord{ResourceKey: ref.Key(), Unlocked: true}
	return &client.VerifyOutcome{Ref: ref, Allowed: true}, nil
}

type hookCounter struct {
	verified, cancelled int
}

func (h *hookCounter) hooks() Hooks {
	return Hooks{
		OnVerify: func() { h.verified++ },
		OnCancel: func() { h.cancelled++ },
	}
}

func TestOpen_GatedArticlePrompts(t *testing.T) {
	s := New(newFakeGate(), gate.Request{Article: "foo"}, Hooks{})

	st, err := s.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Prompting, st)
	assert.Equal(t, gate.ArticleRef("foo"), s.Resource())
}

func TestSubmit_CorrectUnlocksAndFiresHook(t *testing.T) {
	fg := newFakeGate()
	h := &hookCounter{}
	s := New(fg, gate.Request{Article: "foo"}, h.hooks())
	ctx := context.Background()

	_, err := s.Open(ctx)
	require.NoError(t, err)

	st, err := s.Submit(ctx, []byte("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, Unlocked, st)
	assert.Equal(t, 1, h.verified)
	assert.Contains(t, fg.records, "article_password_foo")
}

func TestSubmit_WrongStaysPromptingWithMessage(t *testing.T) {
	fg := newFakeGate()
	h := &hookCounter{}
	s := New(fg, gate.Request{Article: "foo"}, h.hooks())
	ctx := context.Background()

	_, err := s.Open(ctx)
	require.NoError(t, err)

	st, err := s.Submit(ctx, []byte("wrong"))
	require.NoError(t, err)
	assert.Equal(t, Prompting, st)
	assert.Equal(t, common.RetryMessage, s.Message())
	assert.Empty(t, fg.records)
	assert.Zero(t, h.verified)

	// retry is allowed
	st, err = s.Submit(ctx, []byte("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, Unlocked, st)
	assert.Empty(t, s.Message())
}

func TestSubmit_WipesSecret(t *testing.T) {
	s := New(newFakeGate(), gate.Request{Article: "foo"}, Hooks{})
	_, err := s.Open(context.Background())
	require.NoError(t, err)

	secret := []byte("wrong")
	_, err = s.Submit(context.Background(), secret)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 5), secret)
}

func TestSubmit_RateLimited(t *testing.T) {
	fg := newFakeGate()
	fg.rateLimited = true
	s := New(fg, gate.Request{Article: "foo"}, Hooks{})
	ctx := context.Background()

	_, err := s.Open(ctx)
	require.NoError(t, err)

	st, err := s.Submit(ctx, []byte("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, Prompting, st)
	assert.Equal(t, RateLimitedMessage, s.Message())
}

func TestFreshSessionAfterAllowOpensUnlocked(t *testing.T) {
	fg := newFakeGate()
	ctx := context.Background()
	q := gate.Request{Article: "foo"}

	s1 := New(fg, q, Hooks{})
	_, err := s1.Open(ctx)
	require.NoError(t, err)
	_, err = s1.Submit(ctx, []byte("hunter2"))
	require.NoError(t, err)

	describes := fg.describes
	s2 := New(fg, q, Hooks{})
	st, err := s2.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, Unlocked, st)
	assert.Equal(t, describes, fg.describes, "local record must short-circuit the server")
}

func TestOpen_CategoryRecordUnlocksArticleInCategory(t *testing.T) {
	fg := newFakeGate()
	ctx := context.Background()

	s1 := New(fg, gate.Request{Category: "news"}, Hooks{})
	_, err := s1.Open(ctx)
	require.NoError(t, err)
	_, err = s1.Submit(ctx, []byte("press"))
	require.NoError(t, err)

	s2 := New(fg, gate.Request{Category: "news", Article: "bar"}, Hooks{})
	st, err := s2.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, Unlocked, st)
	assert.Equal(t, gate.CategoryRef("news"), s2.Resource())

	// the article's metadata names the category even when the link does not
	s3 := New(fg, gate.Request{Article: "bar"}, Hooks{})
	st, err = s3.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, Unlocked, st)
}

func TestOpen_CategoryRecordDoesNotOpenArticleWithOwnSecret(t *testing.T) {
	fg := newFakeGate()
	ctx := context.Background()

	s1 := New(fg, gate.Request{Category: "news"}, Hooks{})
	_, err := s1.Open(ctx)
	require.NoError(t, err)
	_, err = s1.Submit(ctx, []byte("press"))
	require.NoError(t, err)

	s2 := New(fg, gate.Request{Category: "news", Article: "foo"}, Hooks{})
	st, err := s2.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, Prompting, st)
	assert.Equal(t, gate.ArticleRef("foo"), s2.Resource())

	st, err = s2.Submit(ctx, []byte("press"))
	require.NoError(t, err)
	assert.Equal(t, Prompting, st)

	st, err = s2.Submit(ctx, []byte("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, Unlocked, st)
	assert.Contains(t, fg.records, "password_news")
	assert.Contains(t, fg.records, "article_password_foo")
}

func TestOpen_UngatedCategoryNeverPrompts(t *testing.T) {
	fg := newFakeGate()
	s := New(fg, gate.Request{Category: "diary"}, Hooks{})

	st, err := s.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Unlocked, st)
	assert.Empty(t, fg.records)

	_, err = s.Submit(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancel_ReturnsToLockedWithoutRecord(t *testing.T) {
	fg := newFakeGate()
	h := &hookCounter{}
	s := New(fg, gate.Request{Article: "foo"}, h.hooks())
	ctx := context.Background()

	_, err := s.Open(ctx)
	require.NoError(t, err)
	_, err = s.Submit(ctx, []byte("nope"))
	require.NoError(t, err)

	st, err := s.Cancel()
	require.NoError(t, err)
	assert.Equal(t, Locked, st)
	assert.Equal(t, 1, h.cancelled)
	assert.Empty(t, fg.records)
}

func TestOpen_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		fg   func() *fakeGate
	}{
		{"server unreachable", func() *fakeGate {
			fg := newFakeGate()
			fg.describeErr = client.ErrUnavailable
			return fg
		}},
		{"config not loadable", func() *fakeGate {
			fg := newFakeGate()
			fg.unavailable = true
			return fg
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.fg(), gate.Request{Article: "foo"}, Hooks{})

			st, err := s.Open(context.Background())
			require.NoError(t, err)
			assert.Equal(t, Unavailable, st)
			assert.Equal(t, UnavailableMessage, s.Message())

			_, err = s.Submit(context.Background(), []byte("hunter2"))
			assert.ErrorIs(t, err, ErrInvalidTransition)

			st, err = s.Cancel()
			require.NoError(t, err)
			assert.Equal(t, Locked, st)
		})
	}
}

func TestOpen_RetryFromUnavailable(t *testing.T) {
	fg := newFakeGate()
	fg.describeErr = client.ErrUnavailable
	s := New(fg, gate.Request{Article: "foo"}, Hooks{})
	ctx := context.Background()

	st, _ := s.Open(ctx)
	require.Equal(t, Unavailable, st)

	fg.describeErr = nil
	st, err := s.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, Prompting, st)
}

func TestSubmit_ServerLostDuringPrompt(t *testing.T) {
	fg := newFakeGate()
	s := New(fg, gate.Request{Article: "foo"}, Hooks{})
	ctx := context.Background()

	_, err := s.Open(ctx)
	require.NoError(t, err)

	fg.verifyErr = client.ErrUnavailable
	st, err := s.Submit(ctx, []byte("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, Unavailable, st)
}

func TestSubmit_OtherErrorKeepsPrompting(t *testing.T) {
	fg := newFakeGate()
	s := New(fg, gate.Request{Article: "foo"}, Hooks{})
	ctx := context.Background()

	_, err := s.Open(ctx)
	require.NoError(t, err)

	boom := errors.New("boom")
	fg.verifyErr = boom
	st, err := s.Submit(ctx, []byte("hunter2"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Prompting, st)
}

func TestInvalidTransitions(t *testing.T) {
	s := New(newFakeGate(), gate.Request{Article: "foo"}, Hooks{})

	_, err := s.Cancel()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.Submit(context.Background(), []byte("hunter2"))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.Open(context.Background())
	require.NoError(t, err)
	_, err = s.Open(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "LOCKED", Locked.String())
	assert.Equal(t, "PROMPTING", Prompting.String())
	assert.Equal(t, "UNLOCKED", Unlocked.String())
	assert.Equal(t, "UNAVAILABLE", Unavailable.String())
	assert.Equal(t, "State(9)", State(9).String())
}
