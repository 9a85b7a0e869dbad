package auth

// User is the credential view of an account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsAdmin      bool
}
