package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mystery-message/internal/cache"
	"github.com/magabrotheeeer/mystery-message/internal/lib/apperr"
	"github.com/magabrotheeeer/mystery-message/internal/lib/jwt"
	"github.com/magabrotheeeer/mystery-message/internal/lib/password"
	"github.com/magabrotheeeer/mystery-message/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mystery-message/internal/models"
	"github.com/magabrotheeeer/mystery-message/internal/services/auth"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateUnverifiedUser(ctx context.Context, id, username, passwordHash, code string,
	expiry time.Time) (*models.User, error) {
	args := m.Called(ctx, id, username, passwordHash, code, expiry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) DeleteUnverifiedUser(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *UserRepoMock) MarkVerified(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Мок для очереди писем
type QueueMock struct {
	mock.Mock
}

func (m *QueueMock) Publish(ctx context.Context, routingKey string, message any) error {
	args := m.Called(ctx, routingKey, message)
	return args.Error(0)
}

// Мок для хранилища отозванных токенов
type TokenStoreMock struct {
	mock.Mock
}

func (m *TokenStoreMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *TokenStoreMock) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

var fixedNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type fixture struct {
	repo   *UserRepoMock
	queue  *QueueMock
	tokens *TokenStoreMock
	maker  *jwt.MakerImpl
	svc    *auth.Service
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		repo:   new(UserRepoMock),
		queue:  new(QueueMock),
		tokens: new(TokenStoreMock),
		maker:  jwt.NewJWTMaker("secret", time.Hour),
	}
	f.svc = auth.NewService(f.repo, f.maker, f.queue, f.tokens, time.Hour, newNoopLogger(),
		auth.WithClock(func() time.Time { return now }),
		auth.WithCodeGenerator(func() (string, error) { return "123456", nil }),
	)
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.queue.AssertExpectations(t)
	f.tokens.AssertExpectations(t)
}

func TestService_SignUp(t *testing.T) {
	expiry := fixedNow.Add(time.Hour)
	created := &models.User{
		ID: "u1", Username: "alice", Email: "alice@x.io",
		VerifyCode: "123456", VerifyCodeExpiry: expiry, IsAcceptingMessages: true,
	}

	tests := []struct {
		name       string
		setupMocks func(f *fixture)
		wantErr    error
		wantKind   apperr.Kind
	}{
		{
			name: "new user",
			setupMocks: func(f *fixture) {
				f.repo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, apperr.ErrUserNotFound).Once()
				f.repo.On("GetUserByEmail", mock.Anything, "alice@x.io").Return(nil, apperr.ErrUserNotFound).Once()
				f.repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					ok, _ := password.Matches(u.PasswordHash, "password123")
					return u.Username == "alice" && u.Email == "alice@x.io" && ok &&
						u.VerifyCode == "123456" && u.VerifyCodeExpiry.Equal(expiry)
				})).Return(created, nil).Once()
				f.queue.On("Publish", mock.Anything, rabbitmq.VerificationRoutingKey, models.VerificationEmail{
					Email: "alice@x.io", Username: "alice", Code: "123456", ExpiresAt: expiry,
				}).Return(nil).Once()
			},
		},
		{
			name: "username held by verified user",
			setupMocks: func(f *fixture) {
				f.repo.On("GetUserByUsername", mock.Anything, "alice").
					Return(&models.User{ID: "u0", Email: "other@x.io", IsVerified: true}, nil).Once()
			},
			wantErr: apperr.ErrUsernameTaken,
		},
		{
			name: "username held by pending user with another email",
			setupMocks: func(f *fixture) {
				f.repo.On("GetUserByUsername", mock.Anything, "alice").
					Return(&models.User{ID: "u0", Email: "other@x.io", VerifyCodeExpiry: fixedNow.Add(time.Minute)}, nil).Once()
			},
			wantErr: apperr.ErrUsernameTaken,
		},
		{
			name: "stale pending username is reclaimed",
			setupMocks: func(f *fixture) {
				f.repo.On("GetUserByUsername", mock.Anything, "alice").
					Return(&models.User{ID: "u0", Email: "other@x.io", VerifyCodeExpiry: fixedNow.Add(-time.Minute)}, nil).Once()
				f.repo.On("DeleteUnverifiedUser", mock.Anything, "u0").Return(1, nil).Once()
				f.repo.On("GetUserByEmail", mock.Anything, "alice@x.io").Return(nil, apperr.ErrUserNotFound).Once()
				f.repo.On("CreateUser", mock.Anything, mock.Anything).Return(created, nil).Once()
				f.queue.On("Publish", mock.Anything, rabbitmq.VerificationRoutingKey, mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "email held by verified user",
			setupMocks: func(f *fixture) {
				f.repo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, apperr.ErrUserNotFound).Once()
				f.repo.On("GetUserByEmail", mock.Anything, "alice@x.io").
					Return(&models.User{ID: "u0", Username: "al", IsVerified: true}, nil).Once()
			},
			wantErr: apperr.ErrEmailTaken,
		},
		{
			name: "re-sign-up of pending email reissues code",
			setupMocks: func(f *fixture) {
				pending := &models.User{ID: "u1", Username: "alice", Email: "alice@x.io", VerifyCodeExpiry: fixedNow.Add(-time.Hour)}
				f.repo.On("GetUserByUsername", mock.Anything, "alice").Return(pending, nil).Once()
				f.repo.On("GetUserByEmail", mock.Anything, "alice@x.io").Return(pending, nil).Once()
				f.repo.On("UpdateUnverifiedUser", mock.Anything, "u1", "alice", mock.AnythingOfType("string"), "123456", expiry).
					Return(created, nil).Once()
				f.queue.On("Publish", mock.Anything, rabbitmq.VerificationRoutingKey, mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "storage failure",
			setupMocks: func(f *fixture) {
				f.repo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, errors.New("db down")).Once()
			},
			wantKind: apperr.KindInternal,
		},
		{
			name: "queue failure keeps record",
			setupMocks: func(f *fixture) {
				f.repo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, apperr.ErrUserNotFound).Once()
				f.repo.On("GetUserByEmail", mock.Anything, "alice@x.io").Return(nil, apperr.ErrUserNotFound).Once()
				f.repo.On("CreateUser", mock.Anything, mock.Anything).Return(created, nil).Once()
				f.queue.On("Publish", mock.Anything, rabbitmq.VerificationRoutingKey, mock.Anything).
					Return(errors.New("channel closed")).Once()
			},
			wantKind: apperr.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(fixedNow)
			tt.setupMocks(f)

			user, err := f.svc.SignUp(context.Background(), "alice", "alice@x.io", "password123")
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantKind != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			default:
				require.NoError(t, err)
				assert.Equal(t, "u1", user.ID)
			}
			f.assertExpectations(t)
		})
	}
}

func TestService_SignUp_PasswordTooLong(t *testing.T) {
	f := newFixture(fixedNow)
	f.repo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, apperr.ErrUserNotFound).Once()

	long := make([]byte, password.MaxLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := f.svc.SignUp(context.Background(), "alice", "alice@x.io", string(long))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	f.assertExpectations(t)
}

func TestService_IsUsernameUnique(t *testing.T) {
	tests := []struct {
		name    string
		holder  *models.User
		repoErr error
		wantErr error
	}{
		{name: "free", repoErr: apperr.ErrUserNotFound},
		{name: "verified holder", holder: &models.User{IsVerified: true}, wantErr: apperr.ErrUsernameTaken},
		{name: "pending holder", holder: &models.User{VerifyCodeExpiry: fixedNow.Add(time.Minute)}, wantErr: apperr.ErrUsernameTaken},
		{name: "stale holder", holder: &models.User{VerifyCodeExpiry: fixedNow.Add(-time.Minute)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(fixedNow)
			if tt.holder != nil {
				f.repo.On("GetUserByUsername", mock.Anything, "bob").Return(tt.holder, nil).Once()
			} else {
				f.repo.On("GetUserByUsername", mock.Anything, "bob").Return(nil, tt.repoErr).Once()
			}

			err := f.svc.IsUsernameUnique(context.Background(), "bob")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			f.assertExpectations(t)
		})
	}
}

func TestService_VerifyCode(t *testing.T) {
	pending := func(expiry time.Time) *models.User {
		return &models.User{ID: "u1", Username: "alice", VerifyCode: "123456", VerifyCodeExpiry: expiry}
	}

	tests := []struct {
		name       string
		code       string
		setupMocks func(f *fixture)
		wantErr    error
	}{
		{
			name: "success",
			code: "123456",
			setupMocks: func(f *fixture) {
				f.repo.On("GetUserByUsername", mock.Anything, "alice").Return(pending(fixedNow.Add(time.Minute)), nil).Once()
				f.repo.On("MarkVerified", mock.Anything, "u1").Return(nil).Once()
			},
		},
		{
			name: "success at the exact expiry instant",
			code: "123456",
			setupMocks: func(f *fixture) {
				f.repo.On("GetUserByUsername", mock.Anything, "alice").Return(pending(fixedNow), nil).Once()
				f.repo.On("MarkVerified", mock.Anything, "u1").Return(nil).Once()
			},
		},
		{
			name: "wrong code",
			code: "000000",
			setupMocks: func(f *fixture) {
				f.repo.On("GetUserByUsername", mock.Anything, "alice").Return(pending(fixedNow.Add(time.Minute)), nil).Once()
			},
			wantErr: apperr.ErrInvalidCode,
		},
		{
			name: "expired even with correct code",
			code: "123456",
			setupMocks: func(f *fixture) {
				f.repo.On("GetUserByUsername", mock.Anything, "alice").Return(pending(fixedNow.Add(-time.Second)), nil).Once()
			},
			wantErr: apperr.ErrCodeExpired,
		},
		{
			name: "unknown user",
			code: "123456",
			setupMocks: func(f *fixture) {
				f.repo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, apperr.ErrUserNotFound).Once()
			},
			wantErr: apperr.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(fixedNow)
			tt.setupMocks(f)

			err := f.svc.VerifyCode(context.Background(), "alice", tt.code)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			f.assertExpectations(t)
		})
	}
}

func TestService_SignIn(t *testing.T) {
	hash, err := password.GetHash("password123")
	require.NoError(t, err)

	verified := &models.User{ID: "u1", Username: "alice", PasswordHash: hash, IsVerified: true, IsAcceptingMessages: true}
	unverified := &models.User{ID: "u2", Username: "bob", PasswordHash: hash}

	tests := []struct {
		name       string
		identifier string
		password   string
		user       *models.User
		repoErr    error
		wantErr    error
	}{
		{name: "by username", identifier: "alice", password: "password123", user: verified},
		{name: "by email", identifier: "alice@x.io", password: "password123", user: verified},
		{name: "no account", identifier: "nobody", password: "password123", repoErr: apperr.ErrUserNotFound, wantErr: apperr.ErrNoAccount},
		{name: "not verified even with correct password", identifier: "bob", password: "password123", user: unverified, wantErr: apperr.ErrNotVerified},
		{name: "wrong password", identifier: "alice", password: "wrong-password", user: verified, wantErr: apperr.ErrIncorrectPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(time.Now())
			if tt.user != nil {
				f.repo.On("GetUserByIdentifier", mock.Anything, tt.identifier).Return(tt.user, nil).Once()
			} else {
				f.repo.On("GetUserByIdentifier", mock.Anything, tt.identifier).Return(nil, tt.repoErr).Once()
			}

			principal, token, err := f.svc.SignIn(context.Background(), tt.identifier, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.PrincipalOf(tt.user), principal)

			claims, err := f.maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, principal, claims.Principal())
			f.assertExpectations(t)
		})
	}
}

func TestService_ValidateTokenAndSignOut(t *testing.T) {
	f := newFixture(time.Now())
	token, err := f.maker.GenerateToken(models.Principal{ID: "u1", Username: "alice", IsVerified: true})
	require.NoError(t, err)
	parsed, err := f.maker.ParseToken(token)
	require.NoError(t, err)
	key := cache.RevokedTokenKey(parsed.ID)

	f.tokens.On("Exists", mock.Anything, key).Return(false, nil).Once()
	claims, err := f.svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	f.tokens.On("Set", mock.Anything, key, true, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= time.Hour
	})).Return(nil).Once()
	require.NoError(t, f.svc.SignOut(context.Background(), claims))

	f.tokens.On("Exists", mock.Anything, key).Return(true, nil).Once()
	_, err = f.svc.ValidateToken(context.Background(), token)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)

	f.assertExpectations(t)
}

func TestService_ValidateToken_Errors(t *testing.T) {
	f := newFixture(time.Now())

	_, err := f.svc.ValidateToken(context.Background(), "garbage")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	token, err := f.maker.GenerateToken(models.Principal{ID: "u1", Username: "alice"})
	require.NoError(t, err)
	f.tokens.On("Exists", mock.Anything, mock.Anything).Return(false, errors.New("redis down")).Once()
	_, err = f.svc.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	f.assertExpectations(t)
}
