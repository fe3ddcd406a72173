package service

import (
	"context"
	"errors"
	"time"

	"gobarber/cmd/internal/domain/entity"
	"gobarber/cmd/internal/guard"
	cognitoclient "gobarber/cmd/internal/integration/aws/cognito"
	"gobarber/cmd/internal/utils"
	"gobarber/cmd/internal/utils/apierror"

	"github.com/aws/smithy-go"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindByID(id int) (*entity.User, error)
	FindBySub(sub string) (*entity.User, error)
	Save(user *entity.User) error
}

type SessionRepository interface {
	FindByID(id string) (*entity.Session, error)
	Save(sess *entity.Session) error
	Delete(id string) error
	DeleteExpired(nowMillis int64) ([]string, error)
}

// BoardDropper forgets the dashboard state kept for a session.
type BoardDropper interface {
	Drop(sessionID string)
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
	From     string `json:"from" validate:"omitempty,max=2048,localpath"`
}

type UserResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	UpdatedAt string `json:"updated_at"`
}

type SignInResponse struct {
	User       *UserResponse `json:"user"`
	Token      string        `json:"token"`
	ExpiresAt  string        `json:"expires_at"`
	RedirectTo string        `json:"redirect_to"`

	// Expires is ExpiresAt as a time, for the session cookie.
	Expires time.Time `json:"-"`
}

type DefaultSessionService struct {
	UserRepo    UserRepository
	SessionRepo SessionRepository
	Boards      BoardDropper
	Validate    *validator.Validate
	Cognito     cognitoclient.CognitoInterface
	Secret      []byte
	TTL         time.Duration
}

func NewSessionService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	boards BoardDropper,
	validate *validator.Validate,
	cogClient cognitoclient.CognitoInterface,
	secret []byte,
	ttl time.Duration,
) *DefaultSessionService {
	return &DefaultSessionService{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Boards:      boards,
		Validate:    validate,
		Cognito:     cogClient,
		Secret:      secret,
		TTL:         ttl,
	}
}

// SignIn authenticates against Cognito, refreshes the local profile and opens
// a session. The token in the response is what the client presents afterwards.
func (s *DefaultSessionService) SignIn(ctx context.Context, req *SignInRequest) (*SignInResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	auth, apierr := handleUserSignin(ctx, s.Cognito, &cognitoclient.UserLogin{Email: req.Email, Password: req.Password})
	if apierr != nil {
		return nil, apierr
	}

	profile, err := s.Cognito.GetProfile(ctx, auth.AccessToken)
	if err != nil {
		log.Errorf("failed to fetch profile for user (%s): %v", req.Email, err)
		return nil, apierror.InternalServerError
	}

	user, err := s.upsertUser(profile)
	if err != nil {
		log.Errorf("failed to save user (%s): %v", profile.Sub, err)
		return nil, apierror.InternalServerError
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.TTL)
	// Never outlive the upstream access token.
	if auth.ExpiresIn > 0 {
		if upstream := now.Add(time.Duration(auth.ExpiresIn) * time.Second); upstream.Before(expiresAt) {
			expiresAt = upstream
		}
	}

	sess := &entity.Session{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		AccessToken: auth.AccessToken,
		ExpiresAt:   expiresAt.UnixMilli(),
		CreatedAt:   now.UnixMilli(),
	}
	if err := s.SessionRepo.Save(sess); err != nil {
		log.Errorf("failed to save session for user %d: %v", user.ID, err)
		return nil, apierror.InternalServerError
	}

	token, err := utils.IssueSessionToken(s.Secret, sess.ID, user.Sub, expiresAt)
	if err != nil {
		log.Errorf("failed to issue session token for user %d: %v", user.ID, err)
		_ = s.SessionRepo.Delete(sess.ID)
		return nil, apierror.InternalServerError
	}

	return &SignInResponse{
		User:       toUserResponse(user),
		Token:      token,
		ExpiresAt:  utils.FormatEpoch(sess.ExpiresAt),
		RedirectTo: guard.SafeReturn(req.From),
		Expires:    time.UnixMilli(sess.ExpiresAt).UTC(),
	}, nil
}

// Resolve maps a raw session token to its stored session. A missing, forged
// or expired token yields no session and no error: the caller is simply
// signed out.
func (s *DefaultSessionService) Resolve(ctx context.Context, rawToken string) (*entity.Session, error) {
	if rawToken == "" {
		return nil, nil
	}

	claims, err := utils.ParseSessionToken(s.Secret, rawToken)
	if err != nil {
		log.Debugf("rejected session token: %v", err)
		return nil, nil
	}

	sess, err := s.SessionRepo.FindByID(claims.Sid)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.User.Sub != claims.Subject {
		return nil, nil
	}

	if sess.Expired(utils.NowUTC()) {
		s.forget(sess.ID)
		return nil, nil
	}
	return sess, nil
}

// SignOut ends sess locally and, best effort, at the identity provider.
func (s *DefaultSessionService) SignOut(ctx context.Context, sess *entity.Session) apierror.ErrorResponse {
	if err := s.Cognito.SignOut(ctx, sess.AccessToken); err != nil {
		log.Warnf("global sign out failed for user %d: %v", sess.UserID, err)
	}

	if err := s.SessionRepo.Delete(sess.ID); err != nil {
		log.Errorf("failed to delete session %s: %v", sess.ID, err)
		return apierror.InternalServerError
	}
	s.Boards.Drop(sess.ID)
	return nil
}

func (s *DefaultSessionService) GetProfile(sess *entity.Session) (*UserResponse, apierror.ErrorResponse) {
	user, err := s.UserRepo.FindByID(sess.UserID)
	if err != nil {
		log.Errorf("failed to find user %d: %v", sess.UserID, err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.NotFoundError
	}
	return toUserResponse(user), nil
}

// PurgeExpired deletes expired sessions and drops their boards. It is run
// periodically by the server.
func (s *DefaultSessionService) PurgeExpired() {
	ids, err := s.SessionRepo.DeleteExpired(utils.NowUTC())
	if err != nil {
		log.Errorf("failed to purge expired sessions: %v", err)
		return
	}
	for _, id := range ids {
		s.Boards.Drop(id)
	}
	if len(ids) > 0 {
		log.Infof("purged %d expired sessions", len(ids))
	}
}

func (s *DefaultSessionService) forget(sessionID string) {
	if err := s.SessionRepo.Delete(sessionID); err != nil {
		log.Errorf("failed to delete expired session %s: %v", sessionID, err)
	}
	s.Boards.Drop(sessionID)
}

func (s *DefaultSessionService) upsertUser(profile *cognitoclient.Profile) (*entity.User, error) {
	user, err := s.UserRepo.FindBySub(profile.Sub)
	if err != nil {
		return nil, err
	}

	now := utils.NowUTC()
	if user == nil {
		user = &entity.User{Sub: profile.Sub, CreatedAt: now}
	}
	user.Name = profile.Name
	user.Email = profile.Email
	user.AvatarURL = profile.AvatarURL
	user.UpdatedAt = now

	if err := s.UserRepo.Save(user); err != nil {
		return nil, err
	}
	return user, nil
}

func handleUserSignin(ctx context.Context, cogClient cognitoclient.CognitoInterface, req *cognitoclient.UserLogin) (*cognitoclient.AuthCreate, apierror.ErrorResponse) {
	auth, err := cogClient.SignIn(ctx, req)
	if err == nil {
		return auth, nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "UserNotFoundException":
			return nil, apierror.IDPUserNotFoundError
		case "UserNotConfirmedException":
			return nil, apierror.IDPUserNotConfirmedError
		case "NotAuthorizedException":
			return nil, apierror.IDPCredentialsMismatchError
		case "TooManyRequestsException", "LimitExceededException":
			return nil, apierror.IDPTooManyRequestsError
		default:
			log.Errorf("signin failed for user (%s): %s - %s", req.Email, apiErr.ErrorCode(), apiErr.ErrorMessage())
			return nil, apierror.InternalServerError
		}
	}

	log.Errorf("failed to signin user (%s): %v", req.Email, err)
	return nil, apierror.InternalServerError
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		UpdatedAt: utils.FormatEpoch(user.UpdatedAt),
	}
}
