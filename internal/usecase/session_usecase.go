package usecase

import (
	"context"
	"sync"
	"time"

	"go-jobboard-client/internal/domain"
	"go-jobboard-client/internal/notify"
	"go-jobboard-client/pkg/apperror"
	"go-jobboard-client/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTopic = "session"

var _ domain.SessionUsecase = (*SessionManager)(nil)

type SessionOptions struct {
	Notifier domain.Notifier
	// RejectExpiredTokens drops a persisted token whose exp claim has passed
	// during Restore. Tokens that are not JWTs are kept.
	RejectExpiredTokens bool
	Now                 func() time.Time
}

// SessionManager owns the authenticated identity and is the only writer of
// the credential store.
type SessionManager struct {
	store         domain.CredentialStore
	auth          domain.AuthAPI
	notifier      domain.Notifier
	rejectExpired bool
	now           func() time.Time

	mu      sync.RWMutex
	current *domain.Session
	loading bool

	// writeMu serializes every store write and the in-memory update after it
	writeMu     sync.Mutex
	restoreOnce sync.Once
	restoreErr  error

	hooksMu  sync.Mutex
	teardown []func(ctx context.Context)
}

func NewSessionManager(store domain.CredentialStore, auth domain.AuthAPI, opts SessionOptions) *SessionManager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SessionManager{
		store:         store,
		auth:          auth,
		notifier:      opts.Notifier,
		rejectExpired: opts.RejectExpiredTokens,
		now:           opts.Now,
		loading:       true,
	}
}

// Restore rehydrates the session from the store once. It always ends the
// loading state; a read failure leaves the session absent and is returned
// for logging only.
func (s *SessionManager) Restore(ctx context.Context) error {
	s.restoreOnce.Do(func() {
		s.restoreErr = s.restore(ctx)
	})
	return s.restoreErr
}

func (s *SessionManager) restore(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	creds, err := s.store.Load(ctx)
	if err != nil {
		logger.Log.Warn("credential store unreadable, starting signed out", "error", err)
		return apperror.Fetch("Could not read stored credentials", err)
	}
	if creds.Token == "" || creds.Profile == nil {
		return nil
	}
	if !creds.Profile.Role.Valid() || creds.Profile.UserID == "" {
		logger.Log.Warn("stored profile is incomplete, ignoring it", "role", creds.Profile.Role)
		return nil
	}
	if s.rejectExpired && s.tokenExpired(creds.Token) {
		logger.Log.Info("stored token has expired, clearing credentials", "user_id", creds.Profile.UserID)
		s.writeMu.Lock()
		if err := s.store.Clear(ctx); err != nil {
			logger.Log.Warn("failed to clear expired credentials", "error", err)
		}
		s.writeMu.Unlock()
		notify.Info(s.notifier, sessionTopic, "Your previous session has expired. Please log in again.")
		return nil
	}

	s.mu.Lock()
	s.current = &domain.Session{Profile: *creds.Profile, AuthToken: creds.Token}
	s.mu.Unlock()
	logger.Log.Info("session restored", "user_id", creds.Profile.UserID, "role", creds.Profile.Role)
	return nil
}

func (s *SessionManager) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.now().Before(exp.Time)
}

// Login persists then sets the session. If persisting fails the session stays
// unchanged and an auth_persist error is returned.
func (s *SessionManager) Login(ctx context.Context, profile domain.Profile, token string) error {
	if token == "" {
		return apperror.Validation("Login response has no token", nil)
	}
	if !profile.Role.Valid() {
		return apperror.Validation("Login response has an unknown role", nil)
	}
	if profile.UserID == "" {
		return apperror.Validation("Login response has no user id", nil)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.Save(ctx, token, profile); err != nil {
		logger.Log.Error("failed to persist credentials", "user_id", profile.UserID, "error", err)
		return apperror.AuthPersist(err)
	}

	s.mu.Lock()
	s.current = &domain.Session{Profile: profile, AuthToken: token}
	s.loading = false
	s.mu.Unlock()

	logger.Log.Info("user logged in", "user_id", profile.UserID, "role", profile.Role)
	return nil
}

// Authenticate exchanges credentials with the backend and logs in. A login
// through one portal with an account of the other role is refused.
func (s *SessionManager) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.Session, error) {
	res, err := s.auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Role.Valid() && res.Profile.Role != req.Role {
		return nil, apperror.Forbidden("This account is not a " + string(req.Role) + " account")
	}
	if err := s.Login(ctx, res.Profile, res.Token); err != nil {
		return nil, err
	}
	sess, _ := s.Current()
	return &sess, nil
}

// Logout clears memory and the store, then runs the teardown hooks. It
// always succeeds; a store failure is only logged.
func (s *SessionManager) Logout(ctx context.Context) {
	s.writeMu.Lock()
	if err := s.store.Clear(ctx); err != nil {
		logger.Log.Warn("failed to clear credentials", "error", err)
	}
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()
	s.writeMu.Unlock()

	if prev != nil {
		logger.Log.Info("user logged out", "user_id", prev.UserID)
	}

	s.hooksMu.Lock()
	hooks := append([]func(context.Context){}, s.teardown...)
	s.hooksMu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
}

// UpdateProfile merges patch into the current profile and persists it.
func (s *SessionManager) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (*domain.Session, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()
	if cur == nil {
		return nil, apperror.NoSession()
	}

	merged := patch.Apply(cur.Profile)
	if err := s.store.Save(ctx, cur.AuthToken, merged); err != nil {
		logger.Log.Error("failed to persist profile update", "user_id", merged.UserID, "error", err)
		return nil, apperror.AuthPersist(err)
	}

	next := &domain.Session{Profile: merged, AuthToken: cur.AuthToken}
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	out := copySession(next)
	return &out, nil
}

// Expire logs out when err says the backend rejected the token. It reports
// whether it did.
func (s *SessionManager) Expire(ctx context.Context, err error) bool {
	if !apperror.IsAuthExpired(err) {
		return false
	}
	if _, ok := s.Current(); !ok {
		return true
	}
	s.Logout(ctx)
	notify.Error(s.notifier, sessionTopic, "Your session has expired. Please log in again.")
	return true
}

func (s *SessionManager) Current() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Session{}, false
	}
	return copySession(s.current), true
}

func (s *SessionManager) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.AuthToken
}

func (s *SessionManager) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *SessionManager) RoleOf() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.RoleNone
	}
	return s.current.Role
}

func (s *SessionManager) IsRole(role domain.Role) bool {
	return role.Valid() && s.RoleOf() == role
}

// OnTeardown registers fn to run after every logout.
func (s *SessionManager) OnTeardown(fn func(ctx context.Context)) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.teardown = append(s.teardown, fn)
}

func copySession(in *domain.Session) domain.Session {
	out := *in
	if in.CompanyVerified != nil {
		v := *in.CompanyVerified
		out.CompanyVerified = &v
	}
	return out
}
