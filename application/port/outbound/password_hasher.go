package outbound

// PasswordHasher produces and verifies one-way password digests for
// offline re-authentication.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}
