package entity

import (
	"errors"
	"strconv"
)

var (
	// ErrUnknownPurpose indicates an OTP record whose payload matches neither
	// the login nor the register shape.
	ErrUnknownPurpose = errors.New("auth: otp purpose is unknown")
)

// PurposeKind names the reason an OTP was issued.
type PurposeKind string

const (
	// PurposeLogin is an OTP for an already known phone number.
	PurposeLogin PurposeKind = "login"
	// PurposeRegister is an OTP for a phone number seen for the first time.
	PurposeRegister PurposeKind = "register"
)

const (
	purposeField = "purpose"
	userIDField  = "user_id"
	phoneField   = "phone"
)

// OtpPurpose is the payload carried alongside an OTP record. Exactly one of
// UserID (login) or Phone (register) is meaningful, selected by Kind.
type OtpPurpose struct {
	Kind   PurposeKind
	UserID int64
	Phone  string
}

// LoginPurpose builds a login payload for an existing user.
func LoginPurpose(userID int64) OtpPurpose {
	return OtpPurpose{Kind: PurposeLogin, UserID: userID}
}

// RegisterPurpose builds a register payload for an unseen phone number.
func RegisterPurpose(phone string) OtpPurpose {
	return OtpPurpose{Kind: PurposeRegister, Phone: phone}
}

// ToExtra encodes the purpose as a flat map suitable for cache storage.
//
// The user id is stored as a decimal string so it survives a JSON round trip
// without losing int64 precision.
func (p OtpPurpose) ToExtra() map[string]any {
	switch p.Kind {
	case PurposeLogin:
		return map[string]any{
			purposeField: string(PurposeLogin),
			userIDField:  strconv.FormatInt(p.UserID, 10),
		}
	case PurposeRegister:
		return map[string]any{
			purposeField: string(PurposeRegister),
			phoneField:   p.Phone,
		}
	default:
		return map[string]any{}
	}
}

// PurposeFromExtra decodes a purpose previously encoded with ToExtra.
func PurposeFromExtra(extra map[string]any) (OtpPurpose, error) {
	kind, ok := extra[purposeField].(string)
	if !ok {
		return OtpPurpose{}, ErrUnknownPurpose
	}

	switch PurposeKind(kind) {
	case PurposeLogin:
		raw, ok := extra[userIDField].(string)
		if !ok {
			return OtpPurpose{}, ErrUnknownPurpose
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return OtpPurpose{}, ErrUnknownPurpose
		}
		return LoginPurpose(id), nil

	case PurposeRegister:
		phone, ok := extra[phoneField].(string)
		if !ok || phone == "" {
			return OtpPurpose{}, ErrUnknownPurpose
		}
		return RegisterPurpose(phone), nil

	default:
		return OtpPurpose{}, ErrUnknownPurpose
	}
}
