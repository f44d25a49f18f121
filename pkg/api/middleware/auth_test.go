package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/authz"
	"github.com/jordanlanch/printfast/pkg/cache"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-test-secret"

type stubUsers map[string]*models.User

func (s stubUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, domain.NewNotFoundError("User")
}

type fixture struct {
	handler  echo.HandlerFunc
	sessions *auth.SessionStore
	seen     *auth.Actor
	cred     *auth.Credential
}

func newFixture(t *testing.T, users stubUsers) *fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client, err := cache.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	f := &fixture{sessions: auth.NewSessionStore(client, time.Hour)}
	resolvers := []auth.Resolver{
		&auth.BearerResolver{Secret: secret, Blacklist: auth.NewTokenBlacklist(client)},
		&auth.SessionResolver{Store: f.sessions, CookieName: "printfast.sid"},
	}
	f.handler = Authenticate(resolvers, users, logger.Nop())(func(c echo.Context) error {
		f.seen = ActorFrom(c)
		f.cred = CredentialFrom(c)
		return c.NoContent(http.StatusNoContent)
	})
	return f
}

func (f *fixture) run(req *http.Request) error {
	return f.handler(echo.New().NewContext(req, httptest.NewRecorder()))
}

func bearer(t *testing.T, userID string) *http.Request {
	t.Helper()
	token, _, err := auth.GenerateJWT(userID, userID+"@example.com", authz.RoleAdmin, secret, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthenticate_Bearer(t *testing.T) {
	f := newFixture(t, stubUsers{"u1": {ID: "u1", Email: "u1@example.com", Role: authz.RoleAdmin, IsActive: true}})

	require.NoError(t, f.run(bearer(t, "u1")))
	require.NotNil(t, f.seen)
	assert.Equal(t, "u1", f.seen.UserID)
	assert.Equal(t, authz.RoleAdmin, f.seen.Role)
	assert.Equal(t, "bearer", f.cred.Transport)
}

func TestAuthenticate_Session(t *testing.T) {
	f := newFixture(t, stubUsers{"u2": {ID: "u2", Role: authz.RoleVendor, IsActive: true}})
	id, err := f.sessions.Create(context.Background(), "u2")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "printfast.sid", Value: id})
	require.NoError(t, f.run(req))
	assert.Equal(t, "u2", f.seen.UserID)
	assert.Equal(t, "session", f.cred.Transport)
	assert.Equal(t, id, f.cred.SessionID)
}

func TestAuthenticate_Rejections(t *testing.T) {
	f := newFixture(t, stubUsers{"inactive": {ID: "inactive", Role: authz.RoleAdmin}})

	err := f.run(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, domain.IsUnauthenticated(err), "no credential")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	assert.True(t, domain.IsUnauthenticated(f.run(req)), "bad token")

	assert.True(t, domain.IsUnauthenticated(f.run(bearer(t, "inactive"))), "inactive user")
	assert.True(t, domain.IsUnauthenticated(f.run(bearer(t, "deleted"))), "missing user")
	assert.Nil(t, f.seen)
}

func TestActorFrom_Public(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, ActorFrom(c))
	assert.Nil(t, CredentialFrom(c))
}

func TestAuthorize(t *testing.T) {
	reached := false
	h := Authorize(authz.OpCreateCampaign)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusNoContent)
	})
	run := func(a *auth.Actor) error {
		c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/api/v1/campaigns", nil), httptest.NewRecorder())
		if a != nil {
			c.Set(actorKey, a)
		}
		return h(c)
	}

	err := run(&auth.Actor{UserID: "v1", Role: authz.RoleVendor})
	assert.True(t, domain.IsForbidden(err))
	assert.False(t, reached)

	assert.True(t, domain.IsUnauthenticated(run(nil)))
	assert.False(t, reached)

	require.NoError(t, run(&auth.Actor{UserID: "a1", Role: authz.RoleAdmin}))
	assert.True(t, reached)
}
