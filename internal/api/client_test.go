package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/emotionpoll/internal/api"
	"github.com/jask/emotionpoll/internal/apitest"
)

func newClient(t *testing.T, baseURL string) *api.Client {
	t.Helper()
	c, err := api.New(baseURL, api.WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:5000", "ftp://example.com", "http://"} {
		_, err := api.New(raw)
		require.Error(t, err, "base url %q", raw)
	}
}

func TestSignupLoginVoteRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend, srv := apitest.Start(t)
	c := newClient(t, srv.URL)

	msg, err := c.Signup(ctx, api.Credentials{Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, api.MsgSignupOK, msg.Message)

	msg, err = c.Signup(ctx, api.Credentials{Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err, "a 400 with a message body is an answer, not a transport error")
	require.Equal(t, "User already exists", msg.Message)

	loggedIn, err := c.CheckAuth(ctx)
	require.NoError(t, err)
	require.False(t, loggedIn)

	msg, err = c.Login(ctx, api.Credentials{Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, api.MsgLoginOK, msg.Message)
	require.NotEmpty(t, c.Cookies())

	loggedIn, err = c.CheckAuth(ctx)
	require.NoError(t, err)
	require.True(t, loggedIn)

	res, err := c.Vote(ctx, []string{"Happy", "Excited"})
	require.NoError(t, err)
	require.Equal(t, api.MsgVoteOK, res.Message)
	require.Equal(t, map[string]int{"Happy": 1, "Excited": 1}, res.Stats.Map())

	votes := backend.Votes()
	require.Len(t, votes, 1)
	require.Equal(t, "ann@example.com", votes[0].Email)
	require.Equal(t, []string{"Happy", "Excited"}, votes[0].Emotions)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Happy", "Excited"}, stats.Labels())

	msg, err = c.Logout(ctx)
	require.NoError(t, err)
	require.Equal(t, api.MsgLogoutOK, msg.Message)
	loggedIn, err = c.CheckAuth(ctx)
	require.NoError(t, err)
	require.False(t, loggedIn)
}

func TestLoginRefusal(t *testing.T) {
	t.Parallel()
	_, srv := apitest.Start(t)
	c := newClient(t, srv.URL)

	msg, err := c.Login(context.Background(), api.Credentials{Email: "nobody@example.com", Password: "x"})
	require.NoError(t, err)
	require.Equal(t, "Invalid credentials", msg.Message)
	require.Empty(t, c.Cookies())
}

func TestVoteWithoutSessionIsRefused(t *testing.T) {
	t.Parallel()
	_, srv := apitest.Start(t)
	c := newClient(t, srv.URL)

	res, err := c.Vote(context.Background(), []string{"Happy"})
	require.NoError(t, err)
	require.Equal(t, "Please log in to vote", res.Message)
	require.Nil(t, res.Stats)
}

func TestUndecodableBodyIsTransportError(t *testing.T) {
	t.Parallel()
	backend, srv := apitest.Start(t)
	backend.SetBroken(true)
	c := newClient(t, srv.URL)

	_, err := c.Login(context.Background(), api.Credentials{Email: "a", Password: "b"})
	require.Error(t, err)
	require.True(t, errors.Is(err, api.ErrTransport))

	var te *api.TransportError
	require.True(t, errors.As(err, &te))
	require.Equal(t, "login", te.Op)
	require.Equal(t, http.StatusBadGateway, te.StatusCode)
}

func TestUnreachableBackendIsTransportError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url)
	_, err := c.Stats(context.Background())
	require.ErrorIs(t, err, api.ErrTransport)
}

func TestRequestsCarryJSONAndRequestID(t *testing.T) {
	t.Parallel()
	var gotType, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		gotID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, srv.URL)
	_, err := c.Signup(context.Background(), api.Credentials{Email: "a", Password: "b"})
	require.NoError(t, err)
	require.Equal(t, "application/json", gotType)
	require.NotEmpty(t, gotID)
}

func TestTimeoutIsTransportError(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := api.New(srv.URL, api.WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	_, err = c.Stats(context.Background())
	require.ErrorIs(t, err, api.ErrTransport)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSetCookiesRestoresSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend, srv := apitest.Start(t)
	backend.AddUser("ann@example.com", "pw")

	first := newClient(t, srv.URL)
	_, err := first.Login(ctx, api.Credentials{Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	second := newClient(t, srv.URL)
	second.SetCookies(first.Cookies())
	loggedIn, err := second.CheckAuth(ctx)
	require.NoError(t, err)
	require.True(t, loggedIn)
}
