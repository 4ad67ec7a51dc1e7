package auth

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when the user does not exist, so unknown
// usernames cost the same as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("trading-wallet-dummy"), bcrypt.DefaultCost)

func HashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	return string(b), err
}

func VerifyPassword(plain, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// BurnCompare runs a comparison that always fails.
func BurnCompare(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
