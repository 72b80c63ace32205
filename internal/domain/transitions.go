package domain

import "time"

// Time-to-live per code kind. Expiry is evaluated lazily at verification
// time against the stored deadline; no background sweep exists.
const (
	RegistrationCodeTTL = 10 * time.Minute
	LoginCodeTTL        = 5 * time.Minute
	ResetTokenTTL       = time.Hour
)

// Each transition below takes an Account value and returns a new one, so a
// transition's preconditions and postconditions can be tested in isolation.
// Callers persist the result with a whole-record save.

// WithRegistrationCode attaches a fresh email-verification code, overwriting
// any pending one. Last write wins between concurrent resends.
func (a Account) WithRegistrationCode(code string, now time.Time) Account {
	a.RegistrationCode = code
	a.RegistrationCodeExpiresAt = now.Add(RegistrationCodeTTL).Unix()
	a.UpdatedAt = now
	return a
}

// WithLoginCode attaches a fresh first-login verification code.
func (a Account) WithLoginCode(code string, now time.Time) Account {
	a.LoginCode = code
	a.LoginCodeExpiresAt = now.Add(LoginCodeTTL).Unix()
	a.UpdatedAt = now
	return a
}

// ConfirmRegistrationCode consumes a pending registration code. On success
// the code fields are cleared and EmailVerified is set. A mismatch leaves
// the pending code intact so the user may retry.
func (a Account) ConfirmRegistrationCode(supplied string, now time.Time) (Account, error) {
	if err := checkCode(a.RegistrationCode, a.RegistrationCodeExpiresAt, supplied, now); err != nil {
		return a, err
	}
	a.RegistrationCode = ""
	a.RegistrationCodeExpiresAt = 0
	a.EmailVerified = true
	a.UpdatedAt = now
	return a, nil
}

// ConfirmLoginCode consumes a pending first-login code. Success sets
// LoginVerified permanently and records the login.
func (a Account) ConfirmLoginCode(supplied string, now time.Time) (Account, error) {
	if err := checkCode(a.LoginCode, a.LoginCodeExpiresAt, supplied, now); err != nil {
		return a, err
	}
	a.LoginCode = ""
	a.LoginCodeExpiresAt = 0
	a.LoginVerified = true
	a.LastSeenAt = &now
	a.UpdatedAt = now
	return a, nil
}

// WithResetToken attaches a single-use password-reset token.
func (a Account) WithResetToken(token string, now time.Time) Account {
	a.ResetToken = token
	a.ResetTokenExpiresAt = now.Add(ResetTokenTTL).Unix()
	a.UpdatedAt = now
	return a
}

// ConsumeResetToken applies a new password hash and clears the reset token.
// Verification state is untouched: a reset flips neither verified flag.
func (a Account) ConsumeResetToken(newHash string, now time.Time) Account {
	a.PasswordHash = newHash
	a.ResetToken = ""
	a.ResetTokenExpiresAt = 0
	a.UpdatedAt = now
	return a
}

// ResetTokenValid reports whether the stored token is present and unexpired.
func (a Account) ResetTokenValid(now time.Time) bool {
	return a.ResetToken != "" && now.Unix() < a.ResetTokenExpiresAt
}

// checkCode is the single source of truth for code validation: a code is
// valid only if one is pending, the supplied value matches exactly, and the
// stored deadline has not passed.
func checkCode(stored string, expiresAt int64, supplied string, now time.Time) error {
	if stored == "" || stored != supplied {
		return ErrInvalidCode
	}
	if now.Unix() >= expiresAt {
		return ErrCodeExpired
	}
	return nil
}
