package inbound

// StartAuthenticationRequest is the payload for requesting an OTP.
type StartAuthenticationRequest struct {
	Phone string `json:"phone" example:"09123456789"`
}

// StartAuthenticationResponse reports the wait window before a new OTP may be
// requested for the same phone.
type StartAuthenticationResponse struct {
	CooldownSeconds int64 `json:"cooldown_seconds" example:"120"`
}

// CompleteAuthenticationRequest is the payload for submitting an OTP code.
type CompleteAuthenticationRequest struct {
	Phone string `json:"phone" example:"09123456789"`
	Code  string `json:"code" example:"483920"`
}

// UserResponse identifies the authenticated account. The id is a decimal
// string so JavaScript clients do not lose precision on large ids.
type UserResponse struct {
	ID    string `json:"id" example:"1978486297683685376"`
	Phone string `json:"phone" example:"09123456789"`
}

// CompleteAuthenticationResponse carries the freshly minted token pair.
type CompleteAuthenticationResponse struct {
	User             UserResponse `json:"user"`
	AccessToken      string       `json:"access_token"`
	AccessExpiresAt  int64        `json:"access_expires_at"`
	RefreshToken     string       `json:"refresh_token"`
	RefreshExpiresAt int64        `json:"refresh_expires_at"`
	Registered       bool         `json:"registered"`
}

// RenewTokenRequest is the payload for exchanging a refresh token.
type RenewTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RenewTokenResponse carries a fresh access token.
type RenewTokenResponse struct {
	AccessToken     string `json:"access_token"`
	AccessExpiresAt int64  `json:"access_expires_at"`
}
