package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/domain"
	"github.com/FreakyLetsFail/uni-swipe/internal/identity"
	"github.com/FreakyLetsFail/uni-swipe/internal/mapper"
	"github.com/FreakyLetsFail/uni-swipe/internal/repository"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// IdentityProvider is the subset of the identity client the auth flows use
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*identity.SignUpResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*identity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*identity.User, error)
	Recover(ctx context.Context, email string) error
}

// CatalogRetry controls how often registration retries loading the subject list
type CatalogRetry struct {
	Attempts int
	Delay    time.Duration
}

type AuthService struct {
	idp         IdentityProvider
	subjectRepo *repository.SubjectRepository
	profiles    *ProfileService
	favorites   *FavoriteService
	retry       CatalogRetry
	logger      *zap.Logger
}

func NewAuthService(
	idp IdentityProvider,
	subjectRepo *repository.SubjectRepository,
	profiles *ProfileService,
	favorites *FavoriteService,
	catalogRetry CatalogRetry,
	logger *zap.Logger,
) *AuthService {
	if catalogRetry.Attempts < 1 {
		catalogRetry.Attempts = 1
	}
	if catalogRetry.Delay <= 0 {
		catalogRetry.Delay = time.Second
	}
	return &AuthService{
		idp:         idp,
		subjectRepo: subjectRepo,
		profiles:    profiles,
		favorites:   favorites,
		retry:       catalogRetry,
		logger:      logger,
	}
}

// subjectIDs loads the catalog subject ids, retrying transient store failures
func (s *AuthService) subjectIDs(ctx context.Context) (map[int64]struct{}, error) {
	var subjects []domain.Subject
	backoff := retry.WithMaxRetries(uint64(s.retry.Attempts-1), retry.NewConstant(s.retry.Delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		subjects, err = s.subjectRepo.List(ctx)
		if err != nil {
			s.logger.Warn("Loading subjects failed, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load subjects: %w", err)
	}

	ids := make(map[int64]struct{}, len(subjects))
	for _, subject := range subjects {
		ids[subject.ID] = struct{}{}
	}
	return ids, nil
}

// Register creates the identity account, the profile and the initial favorites
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.RegisterResponse, error) {
	known, err := s.subjectIDs(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range req.FavoriteSubjectIDs {
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrSubjectNotFound, id)
		}
	}

	radius := domain.DefaultSearchRadius
	if req.Radius != nil {
		radius = *req.Radius
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	metadata := map[string]interface{}{
		"full_name":          strings.TrimSpace(req.FullName),
		"degree_type":        req.DegreeType,
		"preferred_location": strings.TrimSpace(req.PreferredLocation),
		"radius":             radius,
	}

	result, err := s.idp.SignUp(ctx, email, req.Password, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}
	if result.User == nil {
		return nil, fmt.Errorf("failed to sign up: %w", &identity.Error{Op: "sign_up", Kind: identity.KindUnknown, Message: "response carried no user"})
	}
	userID := result.User.ID

	profile := &domain.Profile{
		ID:                userID,
		Email:             email,
		FullName:          strings.TrimSpace(req.FullName),
		PreferredLocation: strings.TrimSpace(req.PreferredLocation),
		Radius:            radius,
		DegreeType:        degreeCategory(req.DegreeType),
	}
	if err := s.profiles.CreateForUser(ctx, profile); err != nil {
		return nil, err
	}
	if err := s.favorites.Replace(ctx, userID, req.FavoriteSubjectIDs); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", userID.String()),
		zap.Int("favorites", len(req.FavoriteSubjectIDs)),
		zap.Bool("confirmation_required", result.Session == nil),
	)

	return &domain.RegisterResponse{
		UserID:               userID,
		Email:                email,
		ConfirmationRequired: result.Session == nil,
		Session:              mapper.ToSessionDTO(result.Session),
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.SessionDTO, error) {
	session, err := s.idp.SignInWithPassword(ctx, strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
	if err != nil {
		s.logger.Info("Sign-in rejected", zap.String("kind", identity.KindOf(err).String()))
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	return mapper.ToSessionDTO(session), nil
}

// Logout revokes the caller's session at the identity provider
func (s *AuthService) Logout(ctx context.Context) error {
	userCtx, err := currentUser(ctx)
	if err != nil {
		return err
	}
	if err := s.idp.SignOut(ctx, userCtx.AccessToken); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func (s *AuthService) Refresh(ctx context.Context, req *domain.RefreshRequest) (*domain.SessionDTO, error) {
	session, err := s.idp.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	return mapper.ToSessionDTO(session), nil
}

// RequestPasswordReset asks the provider to mail a reset link
func (s *AuthService) RequestPasswordReset(ctx context.Context, req *domain.PasswordResetRequest) error {
	if err := s.idp.Recover(ctx, strings.TrimSpace(strings.ToLower(req.Email))); err != nil {
		return fmt.Errorf("failed to request password reset: %w", err)
	}
	return nil
}

// Me returns the provider's record of the caller
func (s *AuthService) Me(ctx context.Context) (*domain.MeResponse, error) {
	userCtx, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.idp.GetUser(ctx, userCtx.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	resp := mapper.ToMeResponse(user)
	return &resp, nil
}
