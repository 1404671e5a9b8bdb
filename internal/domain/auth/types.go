package auth

import "time"

// Config drives token validation.
type Config struct {
	Secret string
	Issuer string
	// TokenTTL bounds tokens minted by IssueToken.
	TokenTTL time.Duration
	// DeviceToken is the long lived session the background reminder tick runs under.
	DeviceToken string
}

// Claims are extracted from a validated JWT.
type Claims struct {
	Subject   string
	TokenType string
	ExpiresAt time.Time
}
