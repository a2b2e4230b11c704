package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/dmitrijs2005/passgate/internal/api"
	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/cryptox"
	"github.com/dmitrijs2005/passgate/internal/gate"
	"github.com/dmitrijs2005/passgate/internal/logging"
	"github.com/dmitrijs2005/passgate/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// ---- fakes ----

type fakeGate struct {
	describeRes gate.Resource
	describeErr error

	verifyRes    *services.VerifyResult
	verifyErr    error
	verifyClient string
	verifySecret string

	body       []byte
	contentErr error
	gotToken   string
	gotClient  string
	gotQuery   gate.Request
}

func (f *fakeGate) Describe(ctx context.Context, q gate.Request) (gate.Resource, error) {
	f.gotQuery = q
	return f.describeRes, f.describeErr
}

func (f *fakeGate) Verify(ctx context.Context, q gate.Request, clientID string, secret []byte) (*services.VerifyResult, error) {
	f.gotQuery = q
	f.verifyClient = clientID
	f.verifySecret = string(secret)
	return f.verifyRes, f.verifyErr
}

func (f *fakeGate) Content(ctx context.Context, q gate.Request, clientID string, token string) ([]byte, error) {
	f.gotQuery = q
	f.gotClient = clientID
	f.gotToken = token
	return f.body, f.contentErr
}

func dial(t *testing.T, g GateService) api.GateServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := NewGRPCServer("bufconn", logging.NewDiscardLogger(), g)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Serve(ctx, lis)
		close(done)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})

	return api.NewGateServiceClient(conn)
}

func TestPing(t *testing.T) {
	c := dial(t, &fakeGate{})

	resp, err := c.Ping(context.Background(), &api.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)
}

func TestDescribe_Gated(t *testing.T) {
	g := &fakeGate{describeRes: gate.Resource{
		Ref: gate.ArticleRef("foo"), RequiresPassword: true, Expected: cryptox.Plain("x"),
	}}
	c := dial(t, g)

	resp, err := c.Describe(context.Background(), &api.DescribeRequest{Category: "diary", Article: "foo"})
	require.NoError(t, err)
	assert.True(t, resp.Protected)
	assert.True(t, resp.Available)
	assert.Equal(t, "article", resp.Kind)
	assert.Equal(t, "foo", resp.ID)
	assert.Equal(t, gate.Request{Category: "diary", Article: "foo"}, g.gotQuery)
}

func TestDescribe_NotGated(t *testing.T) {
	c := dial(t, &fakeGate{describeRes: gate.Resource{Ref: gate.CategoryRef("diary")}})

	resp, err := c.Describe(context.Background(), &api.DescribeRequest{Category: "diary"})
	require.NoError(t, err)
	assert.False(t, resp.Protected)
	assert.True(t, resp.Available)
}

func TestDescribe_ConfigUnavailable(t *testing.T) {
	err := fmt.Errorf("%w: article %q: boom", common.ErrorConfigUnavailable, "foo")
	c := dial(t, &fakeGate{describeErr: err})

	resp, rpcErr := c.Describe(context.Background(), &api.DescribeRequest{Article: "foo"})
	require.NoError(t, rpcErr)
	assert.False(t, resp.Available)
	assert.False(t, resp.Protected)
}

func TestVerify_Allowed(t *testing.T) {
	g := &fakeGate{verifyRes: &services.VerifyResult{
		Decision:    gate.Allow(),
		Ref:         gate.ArticleRef("foo"),
		UnlockToken: "tok",
	}}
	c := dial(t, g)

	resp, err := c.Verify(context.Background(), &api.VerifyRequest{Article: "foo", ClientID: "c1", Secret: []byte("hunter2")})
	require.NoError(t, err)
	assert.True(t, resp.Allowed)
	assert.Equal(t, "tok", resp.UnlockToken)
	assert.Equal(t, "article", resp.Kind)
	assert.Equal(t, "c1", g.verifyClient)
	assert.Equal(t, "hunter2", g.verifySecret)
}

func TestVerify_Denied(t *testing.T) {
	g := &fakeGate{verifyRes: &services.VerifyResult{
		Decision: gate.Deny(gate.ReasonSecretMismatch),
		Ref:      gate.ArticleRef("foo"),
	}}
	c := dial(t, g)

	resp, err := c.Verify(context.Background(), &api.VerifyRequest{Article: "foo", ClientID: "c1", Secret: []byte("wrong")})
	require.NoError(t, err)
	assert.False(t, resp.Allowed)
	assert.Equal(t, "SECRET_MISMATCH", resp.Reason)
	assert.Empty(t, resp.UnlockToken)
}

func TestVerify_ErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{common.ErrorNotGated, codes.FailedPrecondition},
		{fmt.Errorf("%w: x", common.ErrorInvalidRequest), codes.InvalidArgument},
		{fmt.Errorf("%w: x", common.ErrorConfigUnavailable), codes.Unavailable},
		{errors.New("boom"), codes.Internal},
	}

	for _, tc := range cases {
		c := dial(t, &fakeGate{verifyErr: tc.err})
		_, err := c.Verify(context.Background(), &api.VerifyRequest{Article: "foo", ClientID: "c1"})
		assert.Equal(t, tc.code, status.Code(err), tc.err.Error())
	}
}

func TestGetArticle_PassesUnlockToken(t *testing.T) {
	g := &fakeGate{body: []byte("# Foo")}
	c := dial(t, g)

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.UnlockTokenHeaderName, "tok-123")
	resp, err := c.GetArticle(ctx, &api.GetArticleRequest{Article: "foo", Category: "diary", ClientID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "# Foo", string(resp.Body))
	assert.Equal(t, "tok-123", g.gotToken)
	assert.Equal(t, "c1", g.gotClient)
	assert.Equal(t, gate.Request{Category: "diary", Article: "foo"}, g.gotQuery)
}

func TestGetArticle_NoToken(t *testing.T) {
	g := &fakeGate{contentErr: fmt.Errorf("%w: missing unlock token", common.ErrorUnauthorized)}
	c := dial(t, g)

	_, err := c.GetArticle(context.Background(), &api.GetArticleRequest{Article: "foo"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Empty(t, g.gotToken)
}

func TestGetArticle_NotFound(t *testing.T) {
	c := dial(t, &fakeGate{contentErr: fmt.Errorf("load: %w", common.ErrorNotFound)})

	_, err := c.GetArticle(context.Background(), &api.GetArticleRequest{Article: "nope"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
