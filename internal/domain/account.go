package domain

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Account is the persisted identity record. Email and handle are stored
// lowercased; uniqueness on both is enforced at the store boundary.
// Pending verification secrets live on the record itself and are cleared
// by the transition that consumes them.
type Account struct {
	AccountID    string `json:"id" dynamodbav:"account_id"`
	Email        string `json:"email" dynamodbav:"email"`
	Handle       string `json:"handle" dynamodbav:"handle"`
	DisplayName  string `json:"display_name" dynamodbav:"display_name"`
	Bio          string `json:"bio,omitempty" dynamodbav:"bio"`
	AvatarURL    string `json:"avatar_url,omitempty" dynamodbav:"avatar_url"`
	PasswordHash string `json:"-" dynamodbav:"password_hash"`

	EmailVerified bool `json:"email_verified" dynamodbav:"email_verified"`
	// LoginVerified is sticky: set once by the first-login code check and
	// never cleared afterwards.
	LoginVerified bool `json:"login_verified" dynamodbav:"login_verified"`

	RegistrationCode          string `json:"-" dynamodbav:"registration_code"`
	RegistrationCodeExpiresAt int64  `json:"-" dynamodbav:"registration_code_expires_at"`
	LoginCode                 string `json:"-" dynamodbav:"login_code"`
	LoginCodeExpiresAt        int64  `json:"-" dynamodbav:"login_code_expires_at"`
	// reset_token backs a sparse GSI; it must be absent, not empty, when no
	// reset is pending or DynamoDB rejects the write.
	ResetToken                string `json:"-" dynamodbav:"reset_token,omitempty"`
	ResetTokenExpiresAt       int64  `json:"-" dynamodbav:"reset_token_expires_at"`

	Active     bool       `json:"active" dynamodbav:"active"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty" dynamodbav:"last_seen_at"`
	CreatedAt  time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateAccountRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Handle      string `json:"handle" validate:"required,min=3,max=30,alphanum"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"required,max=80"`
	Bio         string `json:"bio" validate:"max=500"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url"`
}

// NewAccount builds an unverified account from a registration request.
// The password is hashed here; the plaintext is never stored.
func NewAccount(accountID string, req CreateAccountRequest, now time.Time) (Account, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return Account{}, err
	}
	return Account{
		AccountID:    accountID,
		Email:        NormalizeKey(req.Email),
		Handle:       NormalizeKey(req.Handle),
		DisplayName:  req.DisplayName,
		Bio:          req.Bio,
		AvatarURL:    req.AvatarURL,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NormalizeKey lowercases and trims an email or handle for storage and lookup.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PasswordMatches reports whether plaintext matches the stored hash.
// It never returns an error; any comparison failure is a non-match.
func (a Account) PasswordMatches(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)) == nil
}
