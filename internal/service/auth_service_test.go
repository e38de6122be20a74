package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/identity"
	"github.com/FreakyLetsFail/uni-swipe/internal/repository"
	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"github.com/FreakyLetsFail/uni-swipe/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeIdentity struct {
	userID      uuid.UUID
	autoConfirm bool
	signUpErr   error
	signInErr   error

	signUpMetadata map[string]interface{}
	signedOut      string
	recovered      string
}

func (f *fakeIdentity) session() *identity.Session {
	return &identity.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "bearer",
		ExpiresIn:    3600,
		User:         &identity.User{ID: f.userID},
	}
}

func (f *fakeIdentity) SignUp(_ context.Context, email, _ string, metadata map[string]interface{}) (*identity.SignUpResult, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	f.signUpMetadata = metadata
	user := &identity.User{ID: f.userID, Email: email}
	if f.autoConfirm {
		return &identity.SignUpResult{User: user, Session: f.session()}, nil
	}
	return &identity.SignUpResult{User: user}, nil
}

func (f *fakeIdentity) SignInWithPassword(context.Context, string, string) (*identity.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.session(), nil
}

func (f *fakeIdentity) RefreshSession(_ context.Context, token string) (*identity.Session, error) {
	if token != "refresh" {
		return nil, &identity.Error{Op: "refresh", Kind: identity.KindSessionExpired, Status: 400}
	}
	return f.session(), nil
}

func (f *fakeIdentity) SignOut(_ context.Context, token string) error {
	f.signedOut = token
	return nil
}

func (f *fakeIdentity) GetUser(_ context.Context, token string) (*identity.User, error) {
	now := time.Now()
	return &identity.User{ID: f.userID, Email: "student@example.org", EmailConfirmedAt: &now, CreatedAt: now}, nil
}

func (f *fakeIdentity) Recover(_ context.Context, email string) error {
	f.recovered = email
	return nil
}

func newAuthService(t *testing.T, s *services, idp *fakeIdentity) *service.AuthService {
	t.Helper()
	return service.NewAuthService(
		idp,
		repository.NewSubjectRepository(s.db),
		s.profiles,
		s.favorites,
		service.CatalogRetry{Attempts: 3, Delay: time.Millisecond},
		zap.NewNop(),
	)
}

func TestAuthService_RegisterPendingConfirmation(t *testing.T) {
	s := setupServices(t)
	subject := testutil.CreateTestSubject(t, s.db, "Informatik", "Bachelor")
	idp := &fakeIdentity{userID: uuid.New()}
	svc := newAuthService(t, s, idp)

	resp, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:              " Lena@Example.org ",
		Password:           "geheim123",
		FullName:           "Lena Schmidt",
		DegreeType:         "bachelor",
		PreferredLocation:  "Berlin",
		FavoriteSubjectIDs: []int64{subject.ID},
	})
	require.NoError(t, err)
	assert.True(t, resp.ConfirmationRequired)
	assert.Nil(t, resp.Session)
	assert.Equal(t, "lena@example.org", resp.Email)
	assert.Equal(t, "Lena Schmidt", idp.signUpMetadata["full_name"])

	var profile domain.Profile
	require.NoError(t, s.db.First(&profile, "id = ?", idp.userID).Error)
	assert.Equal(t, "Berlin", profile.PreferredLocation)
	assert.Equal(t, domain.DefaultSearchRadius, profile.Radius)

	var favorites int64
	require.NoError(t, s.db.Model(&domain.FavoriteSubject{}).Where("user_id = ?", idp.userID).Count(&favorites).Error)
	assert.Equal(t, int64(1), favorites)
}

func TestAuthService_RegisterAutoConfirmed(t *testing.T) {
	s := setupServices(t)
	subject := testutil.CreateTestSubject(t, s.db, "Informatik", "Bachelor")
	idp := &fakeIdentity{userID: uuid.New(), autoConfirm: true}
	svc := newAuthService(t, s, idp)

	radius := 10
	resp, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:              "lena@example.org",
		Password:           "geheim123",
		FullName:           "Lena",
		Radius:             &radius,
		FavoriteSubjectIDs: []int64{subject.ID},
	})
	require.NoError(t, err)
	assert.False(t, resp.ConfirmationRequired)
	require.NotNil(t, resp.Session)
	assert.Equal(t, "access", resp.Session.AccessToken)
}

func TestAuthService_RegisterRejectsUnknownSubject(t *testing.T) {
	s := setupServices(t)
	idp := &fakeIdentity{userID: uuid.New()}
	svc := newAuthService(t, s, idp)

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:              "lena@example.org",
		Password:           "geheim123",
		FullName:           "Lena",
		FavoriteSubjectIDs: []int64{404},
	})
	assert.ErrorIs(t, err, service.ErrSubjectNotFound)
	assert.Nil(t, idp.signUpMetadata, "identity provider must not be called")
}

func TestAuthService_RegisterPropagatesIdentityKind(t *testing.T) {
	s := setupServices(t)
	subject := testutil.CreateTestSubject(t, s.db, "Informatik", "Bachelor")
	idp := &fakeIdentity{
		userID:    uuid.New(),
		signUpErr: &identity.Error{Op: "sign_up", Kind: identity.KindUserAlreadyExists, Status: 422},
	}
	svc := newAuthService(t, s, idp)

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:              "lena@example.org",
		Password:           "geheim123",
		FullName:           "Lena",
		FavoriteSubjectIDs: []int64{subject.ID},
	})
	require.Error(t, err)
	assert.Equal(t, identity.KindUserAlreadyExists, identity.KindOf(err))
}

func TestAuthService_LoginRefreshLogout(t *testing.T) {
	s := setupServices(t)
	idp := &fakeIdentity{userID: uuid.New()}
	svc := newAuthService(t, s, idp)

	session, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "a@b.de", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "access", session.AccessToken)

	_, err = svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: "stale"})
	assert.Equal(t, identity.KindSessionExpired, identity.KindOf(err))

	require.NoError(t, svc.Logout(userContext(idp.userID)))
	assert.Equal(t, "access-token", idp.signedOut)

	me, err := svc.Me(userContext(idp.userID))
	require.NoError(t, err)
	assert.True(t, me.EmailConfirmed)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), &domain.PasswordResetRequest{Email: "A@B.de"}))
	assert.Equal(t, "a@b.de", idp.recovered)
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	s := setupServices(t)
	idp := &fakeIdentity{signInErr: &identity.Error{Op: "sign_in", Kind: identity.KindInvalidCredentials, Status: 400}}
	svc := newAuthService(t, s, idp)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "a@b.de", Password: "x"})
	var ie *identity.Error
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, identity.KindInvalidCredentials, ie.Kind)
}
