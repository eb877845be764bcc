package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"gestor/internal/backend"
	"gestor/internal/credentials"
	dErrors "gestor/pkg/domain-errors"
)

func (s *SessionSuite) TestRefresh() {
	ctx := context.Background()

	s.T().Run("replaces both tokens on success", func(t *testing.T) {
		s.seedCredentials("tok-old", "client-1", "ref-old")
		s.mockAPI.EXPECT().Refresh(gomock.Any(), "ref-old").
			Return(&backend.RefreshResponse{Token: "tok-new", RefreshToken: "ref-new"}, nil)

		token, err := s.service.Refresher().Refresh(ctx, s.store)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), "tok-new", token)

		got, _ := s.store.Get(credentials.KindAuthToken)
		assert.Equal(s.T(), "tok-new", got)
		got, _ = s.store.Get(credentials.KindRefreshToken)
		assert.Equal(s.T(), "ref-new", got)

		// The tenant id survives the rotation.
		clientID, ok := s.store.Get(credentials.KindClientID)
		assert.True(s.T(), ok)
		assert.Equal(s.T(), "client-1", clientID)
	})

	s.T().Run("missing refresh token fails before any network traffic", func(t *testing.T) {
		require.NoError(s.T(), s.store.ClearAll())
		require.NoError(s.T(), s.store.Set(credentials.KindAuthToken, "tok-1"))

		_, err := s.service.Refresher().Refresh(ctx, s.store)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNoRefreshToken))

		// The auth token is left alone: nothing was attempted.
		token, ok := s.store.Get(credentials.KindAuthToken)
		assert.True(s.T(), ok)
		assert.Equal(s.T(), "tok-1", token)
	})

	s.T().Run("failure clears every credential", func(t *testing.T) {
		require.NoError(s.T(), s.store.ClearAll())
		s.seedCredentials("tok-old", "client-1", "ref-dead")
		s.mockAPI.EXPECT().Refresh(gomock.Any(), "ref-dead").
			Return(nil, dErrors.New(dErrors.CodeUnauthenticated, "refresh token expired"))

		_, err := s.service.Refresher().Refresh(ctx, s.store)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeRefreshFailed))
		s.assertStoreEmpty()
	})

	s.T().Run("transient backend failure still terminates the session", func(t *testing.T) {
		s.seedCredentials("tok-old", "client-1", "ref-1")
		s.mockAPI.EXPECT().Refresh(gomock.Any(), "ref-1").
			Return(nil, dErrors.New(dErrors.CodeTransient, "backend unreachable"))

		_, err := s.service.Refresher().Refresh(ctx, s.store)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeRefreshFailed))
		s.assertStoreEmpty()
	})
}

func (s *SessionSuite) TestRefresh_ConcurrentCallersShareOneNetworkCall() {
	const workers = 6

	// Each request carries its own store for the same browser session, so
	// every worker gets an independent copy seeded with the same pair.
	stores := make([]*credentials.MemoryStore, workers)
	for i := range stores {
		stores[i] = credentials.NewMemoryStore()
		require.NoError(s.T(), stores[i].Set(credentials.KindAuthToken, "tok-old"))
		require.NoError(s.T(), stores[i].Set(credentials.KindClientID, "client-1"))
		require.NoError(s.T(), stores[i].Set(credentials.KindRefreshToken, "ref-shared"))
	}

	// The upstream call is slow enough for the callers to pile up on the
	// in-flight request. Overlap is not guaranteed, so the expectation is a
	// range: at least one call, never more than one per worker.
	s.mockAPI.EXPECT().Refresh(gomock.Any(), "ref-shared").
		DoAndReturn(func(ctx context.Context, refreshToken string) (*backend.RefreshResponse, error) {
			time.Sleep(50 * time.Millisecond)
			return &backend.RefreshResponse{Token: "tok-new", RefreshToken: "ref-new"}, nil
		}).
		MinTimes(1).MaxTimes(workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := s.service.Refresher().Refresh(context.Background(), stores[i])
			assert.NoError(s.T(), err)
			assert.Equal(s.T(), "tok-new", token)
		}()
	}
	wg.Wait()

	// Every caller persisted the rotated pair into its own store.
	for i := range workers {
		token, _ := stores[i].Get(credentials.KindAuthToken)
		assert.Equal(s.T(), "tok-new", token)
		refresh, _ := stores[i].Get(credentials.KindRefreshToken)
		assert.Equal(s.T(), "ref-new", refresh)
	}
}
