package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-jobboard-client/internal/domain"
	"go-jobboard-client/internal/usecase"
	"go-jobboard-client/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-1", "exp": exp.Unix()})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestSessionManager_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("Should expose the persisted role after restore", func(t *testing.T) {
		store := new(MockCredentialStore)
		p := candidateProfile()
		store.On("Load", ctx).Return(domain.Credentials{Token: "opaque", Profile: &p}, nil).Once()

		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{})
		assert.True(t, sm.Loading())
		require.NoError(t, sm.Restore(ctx))

		assert.False(t, sm.Loading())
		assert.Equal(t, domain.RoleCandidate, sm.RoleOf())
		assert.True(t, sm.IsRole(domain.RoleCandidate))
		assert.Equal(t, "opaque", sm.Token())
		store.AssertExpectations(t)
	})

	t.Run("Should report no role when nothing was persisted", func(t *testing.T) {
		store := new(MockCredentialStore)
		store.On("Load", ctx).Return(domain.Credentials{}, nil)

		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{})
		require.NoError(t, sm.Restore(ctx))

		assert.Equal(t, domain.RoleNone, sm.RoleOf())
		assert.False(t, sm.IsRole(domain.RoleNone))
		_, ok := sm.Current()
		assert.False(t, ok)
	})

	t.Run("Should treat a token without a profile as absent", func(t *testing.T) {
		store := new(MockCredentialStore)
		store.On("Load", ctx).Return(domain.Credentials{Token: "t"}, nil)

		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{})
		require.NoError(t, sm.Restore(ctx))
		assert.Equal(t, domain.RoleNone, sm.RoleOf())
	})

	t.Run("Should run only once", func(t *testing.T) {
		store := new(MockCredentialStore)
		store.On("Load", ctx).Return(domain.Credentials{}, nil).Once()

		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{})
		require.NoError(t, sm.Restore(ctx))
		require.NoError(t, sm.Restore(ctx))
		store.AssertNumberOfCalls(t, "Load", 1)
	})

	t.Run("Should finish loading even when the store fails", func(t *testing.T) {
		store := new(MockCredentialStore)
		store.On("Load", ctx).Return(domain.Credentials{}, errors.New("disk gone"))

		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{})
		err := sm.Restore(ctx)

		assert.ErrorIs(t, err, apperror.ErrFetch)
		assert.False(t, sm.Loading())
		assert.Equal(t, domain.RoleNone, sm.RoleOf())
	})

	t.Run("Should clear an expired JWT", func(t *testing.T) {
		now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
		p := candidateProfile()
		store := new(MockCredentialStore)
		store.On("Load", ctx).Return(domain.Credentials{Token: signedToken(t, now.Add(-time.Hour)), Profile: &p}, nil)
		store.On("Clear", ctx).Return(nil).Once()
		notes := &recordingNotifier{}

		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{
			RejectExpiredTokens: true,
			Notifier:            notes,
			Now:                 func() time.Time { return now },
		})
		require.NoError(t, sm.Restore(ctx))

		assert.Equal(t, domain.RoleNone, sm.RoleOf())
		assert.Len(t, notes.All(), 1)
		store.AssertExpectations(t)
	})

	t.Run("Should keep a JWT that has not expired", func(t *testing.T) {
		now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
		p := candidateProfile()
		store := new(MockCredentialStore)
		store.On("Load", ctx).Return(domain.Credentials{Token: signedToken(t, now.Add(time.Hour)), Profile: &p}, nil)

		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{
			RejectExpiredTokens: true,
			Now:                 func() time.Time { return now },
		})
		require.NoError(t, sm.Restore(ctx))

		assert.Equal(t, domain.RoleCandidate, sm.RoleOf())
		store.AssertNotCalled(t, "Clear", mock.Anything)
	})
}

func TestSessionManager_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Should persist then expose the session", func(t *testing.T) {
		store := new(MockCredentialStore)
		p := candidateProfile()
		store.On("Save", ctx, "tok", p).Return(nil).Once()

		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{})
		require.NoError(t, sm.Login(ctx, p, "tok"))

		s, ok := sm.Current()
		require.True(t, ok)
		assert.Equal(t, "tok", s.AuthToken)
		assert.Equal(t, "u-1", s.UserID)
		assert.False(t, sm.Loading())
	})

	t.Run("Should leave the session absent when persisting fails", func(t *testing.T) {
		store := new(MockCredentialStore)
		store.On("Save", ctx, "tok", mock.Anything).Return(errors.New("read-only file system"))

		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{})
		err := sm.Login(ctx, candidateProfile(), "tok")

		assert.ErrorIs(t, err, apperror.ErrAuthPersist)
		assert.Equal(t, domain.RoleNone, sm.RoleOf())
		assert.Empty(t, sm.Token())
	})

	t.Run("Should reject an empty token or unknown role", func(t *testing.T) {
		store := new(MockCredentialStore)
		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{})

		assert.ErrorIs(t, sm.Login(ctx, candidateProfile(), ""), apperror.ErrValidation)

		p := candidateProfile()
		p.Role = "admin"
		assert.ErrorIs(t, sm.Login(ctx, p, "tok"), apperror.ErrValidation)
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSessionManager_Authenticate(t *testing.T) {
	ctx := context.Background()
	req := domain.LoginRequest{Email: "ana@example.com", Password: "pw", Role: domain.RoleRecruiter}

	t.Run("Should log in with the backend result", func(t *testing.T) {
		store := new(MockCredentialStore)
		auth := new(MockAuthAPI)
		p := candidateProfile()
		p.Role = domain.RoleRecruiter
		auth.On("Login", ctx, req).Return(&domain.LoginResult{Token: "tok", Profile: p}, nil)
		store.On("Save", ctx, "tok", p).Return(nil)

		sm := usecase.NewSessionManager(store, auth, usecase.SessionOptions{})
		s, err := sm.Authenticate(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, domain.RoleRecruiter, s.Role)
		assert.True(t, sm.IsRole(domain.RoleRecruiter))
	})

	t.Run("Should refuse an account of the other role", func(t *testing.T) {
		store := new(MockCredentialStore)
		auth := new(MockAuthAPI)
		auth.On("Login", ctx, req).Return(&domain.LoginResult{Token: "tok", Profile: candidateProfile()}, nil)

		sm := usecase.NewSessionManager(store, auth, usecase.SessionOptions{})
		_, err := sm.Authenticate(ctx, req)

		assert.Error(t, err)
		assert.Equal(t, domain.RoleNone, sm.RoleOf())
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSessionManager_LogoutAndUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should clear and run teardown hooks even if the store fails", func(t *testing.T) {
		store := new(MockCredentialStore)
		p := candidateProfile()
		store.On("Save", ctx, "tok", p).Return(nil)
		store.On("Clear", ctx).Return(errors.New("locked"))

		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{})
		require.NoError(t, sm.Login(ctx, p, "tok"))

		ran := 0
		sm.OnTeardown(func(context.Context) { ran++ })
		sm.Logout(ctx)

		assert.Equal(t, 1, ran)
		assert.Equal(t, domain.RoleNone, sm.RoleOf())
	})

	t.Run("Should merge the patch and keep the token", func(t *testing.T) {
		store := new(MockCredentialStore)
		p := candidateProfile()
		store.On("Save", ctx, "tok", p).Return(nil).Once()
		merged := p
		merged.ProfileCompleteness = 80
		store.On("Save", ctx, "tok", merged).Return(nil).Once()

		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{})
		require.NoError(t, sm.Login(ctx, p, "tok"))

		completeness := 80
		s, err := sm.UpdateProfile(ctx, domain.ProfilePatch{ProfileCompleteness: &completeness})
		require.NoError(t, err)
		assert.Equal(t, 80, s.ProfileCompleteness)
		assert.Equal(t, "Ana", s.DisplayName)
		assert.Equal(t, "tok", sm.Token())
		store.AssertExpectations(t)
	})

	t.Run("Should keep the previous profile when persisting the patch fails", func(t *testing.T) {
		store := new(MockCredentialStore)
		p := candidateProfile()
		store.On("Save", ctx, "tok", p).Return(nil).Once()
		store.On("Save", ctx, "tok", mock.Anything).Return(errors.New("full")).Once()

		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{})
		require.NoError(t, sm.Login(ctx, p, "tok"))

		name := "Other"
		_, err := sm.UpdateProfile(ctx, domain.ProfilePatch{DisplayName: &name})
		assert.ErrorIs(t, err, apperror.ErrAuthPersist)
		s, _ := sm.Current()
		assert.Equal(t, "Ana", s.DisplayName)
	})

	t.Run("Should fail without a session", func(t *testing.T) {
		sm := usecase.NewSessionManager(new(MockCredentialStore), nil, usecase.SessionOptions{})
		_, err := sm.UpdateProfile(ctx, domain.ProfilePatch{})
		assert.ErrorIs(t, err, apperror.ErrNoSession)
	})

	t.Run("Should expire only on auth expiry", func(t *testing.T) {
		store := new(MockCredentialStore)
		p := candidateProfile()
		store.On("Save", ctx, "tok", p).Return(nil)
		store.On("Clear", ctx).Return(nil)
		notes := &recordingNotifier{}

		sm := usecase.NewSessionManager(store, nil, usecase.SessionOptions{Notifier: notes})
		require.NoError(t, sm.Login(ctx, p, "tok"))

		assert.False(t, sm.Expire(ctx, apperror.Fetch("boom", nil)))
		assert.Equal(t, domain.RoleCandidate, sm.RoleOf())

		assert.True(t, sm.Expire(ctx, apperror.AuthExpired("Invalid token")))
		assert.Equal(t, domain.RoleNone, sm.RoleOf())
		require.Len(t, notes.All(), 1)
		assert.Equal(t, domain.NotificationError, notes.All()[0].Level)
	})
}
