package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tasklet-app/tasklet/internal/auth/entity"
	"github.com/tasklet-app/tasklet/internal/pkg/goerror"
	"github.com/tasklet-app/tasklet/internal/pkg/otp"
)

type CompleteAuthenticationInput struct {
	Phone string `validate:"required,phone"`
	Code  string `validate:"required,numeric"`
}

type CompleteAuthenticationOutput struct {
	User      entity.User
	TokenPair entity.TokenPair
	// Registered reports whether a new user was created for this phone.
	Registered bool
}

// CompleteAuthentication checks the submitted code against the active OTP for
// the phone. On a match the OTP is consumed and a token pair is minted, either
// for the existing user (login) or for a freshly created one (register).
// Every previously outstanding refresh token of the user is blacklisted when
// the new pair is issued.
func (s *Usecase) CompleteAuthentication(ctx context.Context, in CompleteAuthenticationInput) (*CompleteAuthenticationOutput, error) {
	ctx, span := s.startSpan(ctx, "CompleteAuthentication")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	phone := strings.TrimSpace(in.Phone)

	ok, reason, extra, err := s.otp.Validate(ctx, phone, in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to validate otp", "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		return nil, s.mapOtpReason(ctx, reason)
	}

	// Consume the record right away so the code cannot be replayed, even if
	// issuance below fails.
	if _, err := s.otp.Cancel(ctx, phone); err != nil {
		slog.ErrorContext(ctx, "failed to cancel otp record", "error", err)
		return nil, goerror.NewServer(err)
	}

	purpose, err := entity.PurposeFromExtra(extra)
	if err != nil {
		slog.ErrorContext(ctx, "otp record carries an unknown purpose payload", "error", err)
		return nil, goerror.NewServer(err)
	}

	switch purpose.Kind {
	case entity.PurposeLogin:
		return s.completeLogin(ctx, purpose.UserID)
	case entity.PurposeRegister:
		return s.completeRegister(ctx, purpose.Phone)
	default:
		return nil, goerror.NewServer(entity.ErrUnknownPurpose)
	}
}

func (s *Usecase) completeLogin(ctx context.Context, userID int64) (*CompleteAuthenticationOutput, error) {
	user, err := s.repoDB.GetUserByID(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user referenced by otp record not found", "user_id", userID)
		return nil, goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if user.Status.Ensure() != entity.UserStatusActive {
		slog.WarnContext(ctx, "user account is not active", "user_id", user.ID)
		return nil, goerror.NewBusiness("account is inactive", goerror.CodeForbidden)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &CompleteAuthenticationOutput{User: *user, TokenPair: *pair}, nil
}

func (s *Usecase) completeRegister(ctx context.Context, phone string) (*CompleteAuthenticationOutput, error) {
	user := entity.User{
		ID:     s.uid.Generate(),
		Phone:  phone,
		Status: entity.UserStatusActive,
	}

	if err := s.repoDB.CreateUser(ctx, user); err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "error", err)
		return nil, goerror.NewServer(err)
	}

	pair, err := s.issueTokenPair(ctx, &user)
	if err != nil {
		return nil, err
	}

	return &CompleteAuthenticationOutput{User: user, TokenPair: *pair, Registered: true}, nil
}

// mapOtpReason turns the validation outcome into a distinct surface status.
// Wrong code and no active code must never collapse into the same status:
// the first means retry, the second means start over.
func (s *Usecase) mapOtpReason(ctx context.Context, reason otp.Reason) error {
	switch reason {
	case otp.ReasonNoActiveOTP:
		return goerror.NewBusiness("no active OTP for this phone", goerror.CodeNotFound)

	case otp.ReasonMismatch:
		slog.WarnContext(ctx, "otp record in cache is not a well-formed mapping")
		return goerror.NewBusiness("OTP record is corrupted, request a new one", goerror.CodeConflict)

	case otp.ReasonNoTokenFound:
		// A record without its token field means the cache was tampered with
		// or there is a bug in the save path.
		slog.ErrorContext(ctx, "otp record exists but carries no token field")
		return goerror.NewServer(errors.New("otp record carries no token"))

	case otp.ReasonDecryptFailed:
		slog.ErrorContext(ctx, "stored otp token could not be decrypted")
		return goerror.NewServer(errors.New("stored otp token could not be decrypted"))

	case otp.ReasonInvalidToken:
		return goerror.NewBusiness("wrong OTP code", goerror.CodeNotAcceptable)

	default:
		return goerror.NewServer(errors.New("unexpected otp validation outcome"))
	}
}
