package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/tasklet-app/tasklet/internal/auth/entity"
	"github.com/tasklet-app/tasklet/internal/pkg/clock"
	"github.com/tasklet-app/tasklet/internal/pkg/goerror"
	"github.com/tasklet-app/tasklet/internal/pkg/goroutine"
	"github.com/tasklet-app/tasklet/internal/pkg/hash"
	"github.com/tasklet-app/tasklet/internal/pkg/instrument"
	"github.com/tasklet-app/tasklet/internal/pkg/jwt"
	"github.com/tasklet-app/tasklet/internal/pkg/otp"
	"github.com/tasklet-app/tasklet/internal/pkg/uid"
	"github.com/tasklet-app/tasklet/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type OtpSmsEvent struct {
	Phone   string
	Purpose entity.PurposeKind
	Code    string
}

type repoMessaging interface {
	PublishOtpSms(ctx context.Context, msg OtpSmsEvent) error
}

type repoDB interface {
	GetUserByPhone(ctx context.Context, phone string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	CreateUser(ctx context.Context, user entity.User) error

	GetRefreshToken(ctx context.Context, tokenHash string) (*entity.RefreshRecord, error)
	// RotateUserSessions atomically blacklists every outstanding refresh token
	// of the user and records the new one. Either both happen or neither.
	RotateUserSessions(ctx context.Context, userID int64, rec entity.RefreshRecord) error
}

type otpManager interface {
	Generate() (string, error)
	Save(ctx context.Context, indicator, code string, extra map[string]any) (bool, error)
	Validate(ctx context.Context, indicator, candidate string) (bool, otp.Reason, map[string]any, error)
	Cancel(ctx context.Context, indicator string) (bool, error)
	Expiration() time.Duration
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	validator     validator.Validator
	otp           otpManager
	hmac          hash.Hash
	uid           uid.NumberID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Otp           otpManager
	HMAC          hash.Hash
	UID           uid.NumberID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		otp:           dep.Otp,
		hmac:          dep.HMAC,
		uid:           dep.UID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

// issueTokenPair mints a refresh and access token for the user, then rotates
// the ledger: every previously outstanding refresh token is blacklisted and
// the new one recorded in the same transaction. When the rotation fails no
// tokens leave this function, so old sessions stay valid rather than being
// partially revoked.
func (s *Usecase) issueTokenPair(ctx context.Context, user *entity.User) (*entity.TokenPair, error) {
	refToken, refExpiresAt, err := s.jwt.GenerateRefresh(user.ID, user.Phone)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate refresh jwt token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	acToken, acExpiresAt, err := s.jwt.GenerateAccess(user.ID, user.Phone)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	refTokenHash, err := s.hmac.Hash(refToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.RotateUserSessions(ctx, user.ID, entity.RefreshRecord{
		ID:        s.uid.Generate(),
		UserID:    user.ID,
		TokenHash: string(refTokenHash),
		ExpiresAt: refExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo rotate user sessions", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &entity.TokenPair{
		AccessToken:      acToken,
		AccessExpiresAt:  acExpiresAt,
		RefreshToken:     refToken,
		RefreshExpiresAt: refExpiresAt,
	}, nil
}
