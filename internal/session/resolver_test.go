package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"gestor/internal/backend"
	"gestor/internal/credentials"
	dErrors "gestor/pkg/domain-errors"
)

// countingStore wraps a Store and counts full clears, so tests can assert the
// stale-credential cleanup runs exactly once under racing resolvers.
type countingStore struct {
	credentials.Store
	clears atomic.Int64
}

func (c *countingStore) ClearAll() error {
	c.clears.Add(1)
	return c.Store.ClearAll()
}

func (s *SessionSuite) TestResolveCurrentPrincipal() {
	ctx := context.Background()

	s.T().Run("happy path", func(t *testing.T) {
		s.seedCredentials("tok-1", "client-1", "")
		s.mockAPI.EXPECT().Me(gomock.Any(), "tok-1").Return(s.newTestPayload(), nil)

		principal, err := s.service.ResolveCurrentPrincipal(ctx, s.store)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), "user-1", principal.ID)
		assert.Equal(s.T(), "client-1", principal.TenantID)
		assert.Equal(s.T(), RoleAdmin, principal.Role)
		assert.Equal(s.T(), StatusActive, principal.Status)
	})

	s.T().Run("repeated resolution hits the identity endpoint each time", func(t *testing.T) {
		s.seedCredentials("tok-1", "client-1", "")
		s.mockAPI.EXPECT().Me(gomock.Any(), "tok-1").Return(s.newTestPayload(), nil).Times(3)

		for range 3 {
			principal, err := s.service.ResolveCurrentPrincipal(ctx, s.store)
			require.NoError(s.T(), err)
			assert.Equal(s.T(), "user-1", principal.ID)
		}

		// Credentials are untouched by successful resolutions.
		token, ok := s.store.Get(credentials.KindAuthToken)
		assert.True(s.T(), ok)
		assert.Equal(s.T(), "tok-1", token)
	})

	s.T().Run("no auth token", func(t *testing.T) {
		require.NoError(s.T(), s.store.ClearAll())

		_, err := s.service.ResolveCurrentPrincipal(ctx, s.store)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthenticated))
	})

	s.T().Run("token without tenant id", func(t *testing.T) {
		require.NoError(s.T(), s.store.ClearAll())
		require.NoError(s.T(), s.store.Set(credentials.KindAuthToken, "tok-1"))

		_, err := s.service.ResolveCurrentPrincipal(ctx, s.store)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthenticated))
	})

	s.T().Run("rejected token clears all credentials", func(t *testing.T) {
		s.seedCredentials("tok-stale", "client-1", "ref-1")
		s.mockAPI.EXPECT().Me(gomock.Any(), "tok-stale").
			Return(nil, dErrors.New(dErrors.CodeUnauthenticated, "token expired"))

		_, err := s.service.ResolveCurrentPrincipal(ctx, s.store)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthenticated))
		s.assertStoreEmpty()
	})

	s.T().Run("transient backend failure leaves credentials intact", func(t *testing.T) {
		s.seedCredentials("tok-1", "client-1", "ref-1")
		s.mockAPI.EXPECT().Me(gomock.Any(), "tok-1").
			Return(nil, dErrors.New(dErrors.CodeTransient, "backend unreachable"))

		_, err := s.service.ResolveCurrentPrincipal(ctx, s.store)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeTransient))

		token, ok := s.store.Get(credentials.KindAuthToken)
		assert.True(s.T(), ok)
		assert.Equal(s.T(), "tok-1", token)
		refresh, ok := s.store.Get(credentials.KindRefreshToken)
		assert.True(s.T(), ok)
		assert.Equal(s.T(), "ref-1", refresh)
	})

	s.T().Run("unknown role in identity payload", func(t *testing.T) {
		s.seedCredentials("tok-1", "client-1", "")
		payload := s.newTestPayload()
		payload.Role = "intern"
		s.mockAPI.EXPECT().Me(gomock.Any(), "tok-1").Return(payload, nil)

		_, err := s.service.ResolveCurrentPrincipal(ctx, s.store)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeMalformedResponse))
	})
}

func (s *SessionSuite) TestResolveCurrentPrincipal_ConcurrentRejectionClearsOnce() {
	const workers = 8

	counting := &countingStore{Store: s.store}
	s.seedCredentials("tok-stale", "client-1", "")
	s.mockAPI.EXPECT().Me(gomock.Any(), "tok-stale").
		Return(nil, dErrors.New(dErrors.CodeUnauthenticated, "token expired")).
		Times(workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.ResolveCurrentPrincipal(context.Background(), counting)
			assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthenticated))
		}()
	}
	wg.Wait()

	assert.EqualValues(s.T(), 1, counting.clears.Load())
	s.assertStoreEmpty()
}

func (s *SessionSuite) TestResolveWithRefresh() {
	ctx := context.Background()

	s.T().Run("valid token resolves without refreshing", func(t *testing.T) {
		s.seedCredentials("tok-1", "client-1", "ref-1")
		s.mockAPI.EXPECT().Me(gomock.Any(), "tok-1").Return(s.newTestPayload(), nil)

		principal, err := s.service.ResolveWithRefresh(ctx, s.store)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), "user-1", principal.ID)
	})

	s.T().Run("expired token is refreshed and retried once", func(t *testing.T) {
		s.seedCredentials("tok-old", "client-1", "ref-old")
		s.mockAPI.EXPECT().Me(gomock.Any(), "tok-old").
			Return(nil, dErrors.New(dErrors.CodeUnauthenticated, "token expired"))
		s.mockAPI.EXPECT().Refresh(gomock.Any(), "ref-old").
			Return(&backend.RefreshResponse{Token: "tok-new", RefreshToken: "ref-new"}, nil)
		s.mockAPI.EXPECT().Me(gomock.Any(), "tok-new").Return(s.newTestPayload(), nil)

		principal, err := s.service.ResolveWithRefresh(ctx, s.store)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), "user-1", principal.ID)

		token, _ := s.store.Get(credentials.KindAuthToken)
		assert.Equal(s.T(), "tok-new", token)
		refresh, _ := s.store.Get(credentials.KindRefreshToken)
		assert.Equal(s.T(), "ref-new", refresh)
	})

	s.T().Run("expired token without refresh token clears and fails", func(t *testing.T) {
		require.NoError(s.T(), s.store.ClearAll())
		s.seedCredentials("tok-old", "client-1", "")
		s.mockAPI.EXPECT().Me(gomock.Any(), "tok-old").
			Return(nil, dErrors.New(dErrors.CodeUnauthenticated, "token expired"))

		_, err := s.service.ResolveWithRefresh(ctx, s.store)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthenticated))
		s.assertStoreEmpty()
	})

	s.T().Run("refresh failure clears and surfaces refresh_failed", func(t *testing.T) {
		s.seedCredentials("tok-old", "client-1", "ref-dead")
		s.mockAPI.EXPECT().Me(gomock.Any(), "tok-old").
			Return(nil, dErrors.New(dErrors.CodeUnauthenticated, "token expired"))
		s.mockAPI.EXPECT().Refresh(gomock.Any(), "ref-dead").
			Return(nil, dErrors.New(dErrors.CodeUnauthenticated, "refresh token expired"))

		_, err := s.service.ResolveWithRefresh(ctx, s.store)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeRefreshFailed))
		s.assertStoreEmpty()
	})

	s.T().Run("retry rejection after successful refresh gives up", func(t *testing.T) {
		s.seedCredentials("tok-old", "client-1", "ref-old")
		s.mockAPI.EXPECT().Me(gomock.Any(), "tok-old").
			Return(nil, dErrors.New(dErrors.CodeUnauthenticated, "token expired"))
		s.mockAPI.EXPECT().Refresh(gomock.Any(), "ref-old").
			Return(&backend.RefreshResponse{Token: "tok-new", RefreshToken: "ref-new"}, nil)
		s.mockAPI.EXPECT().Me(gomock.Any(), "tok-new").
			Return(nil, dErrors.New(dErrors.CodeUnauthenticated, "token revoked"))

		_, err := s.service.ResolveWithRefresh(ctx, s.store)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthenticated))
		s.assertStoreEmpty()
	})

	s.T().Run("transient failure is surfaced without refreshing", func(t *testing.T) {
		s.seedCredentials("tok-1", "client-1", "ref-1")
		s.mockAPI.EXPECT().Me(gomock.Any(), "tok-1").
			Return(nil, dErrors.New(dErrors.CodeTransient, "backend unreachable"))

		_, err := s.service.ResolveWithRefresh(ctx, s.store)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeTransient))

		token, ok := s.store.Get(credentials.KindAuthToken)
		assert.True(s.T(), ok)
		assert.Equal(s.T(), "tok-1", token)
	})
}
