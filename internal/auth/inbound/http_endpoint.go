package inbound

import (
	"strconv"

	"github.com/tasklet-app/tasklet/internal/auth/usecase"
	"github.com/tasklet-app/tasklet/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the OTP authentication workflow.
type HTTPEndpoint struct {
	uc uc
}

// StartAuthentication requests an OTP for a phone number.
// @Summary Start authentication
// @Description Sends a one-time code to the phone. While a code is active the same phone cannot request another one.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body StartAuthenticationRequest true "Start payload"
// @Success 200 {object} router.successResponse{data=StartAuthenticationResponse} "Code sent, cooldown in seconds"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Invalid phone number"
// @Failure 423 {object} router.errorResponse "An OTP is already active"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/start [post]
func (h *HTTPEndpoint) StartAuthentication(r *router.Request) (any, error) {
	var req StartAuthenticationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.StartAuthentication(r.Context(), usecase.StartAuthenticationInput{
		Phone: req.Phone,
	})
	if err != nil {
		return nil, err
	}

	return StartAuthenticationResponse{
		CooldownSeconds: int64(resp.Cooldown.Seconds()),
	}, nil
}

// CompleteAuthentication submits the OTP code and returns a token pair.
// @Summary Complete authentication
// @Description Verifies the submitted code, consumes the OTP, and returns access and refresh tokens. A first-time phone gets a new account.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body CompleteAuthenticationRequest true "Complete payload"
// @Success 200 {object} router.successResponse{data=CompleteAuthenticationResponse} "Token pair"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 403 {object} router.errorResponse "Account is inactive"
// @Failure 404 {object} router.errorResponse "No active OTP for this phone"
// @Failure 406 {object} router.errorResponse "Wrong OTP code"
// @Failure 409 {object} router.errorResponse "OTP record is corrupted"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/complete [post]
func (h *HTTPEndpoint) CompleteAuthentication(r *router.Request) (any, error) {
	var req CompleteAuthenticationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.CompleteAuthentication(r.Context(), usecase.CompleteAuthenticationInput{
		Phone: req.Phone,
		Code:  req.Code,
	})
	if err != nil {
		return nil, err
	}

	return CompleteAuthenticationResponse{
		User: UserResponse{
			ID:    strconv.FormatInt(resp.User.ID, 10),
			Phone: resp.User.Phone,
		},
		AccessToken:      resp.TokenPair.AccessToken,
		AccessExpiresAt:  resp.TokenPair.AccessExpiresAt.Unix(),
		RefreshToken:     resp.TokenPair.RefreshToken,
		RefreshExpiresAt: resp.TokenPair.RefreshExpiresAt.Unix(),
		Registered:       resp.Registered,
	}, nil
}

// RenewToken exchanges a refresh token for a fresh access token.
// @Summary Renew access token
// @Description Verifies the refresh token against the ledger and returns a new access token. The refresh token is unchanged.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RenewTokenRequest true "Renew payload"
// @Success 200 {object} router.successResponse{data=RenewTokenResponse} "Fresh access token"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Token expired or blacklisted"
// @Failure 403 {object} router.errorResponse "Token malformed"
// @Failure 404 {object} router.errorResponse "Unknown user"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/renew [post]
func (h *HTTPEndpoint) RenewToken(r *router.Request) (any, error) {
	var req RenewTokenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RenewToken(r.Context(), usecase.RenewTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		return nil, err
	}

	return RenewTokenResponse{
		AccessToken:     resp.AccessToken,
		AccessExpiresAt: resp.AccessExpiresAt.Unix(),
	}, nil
}
