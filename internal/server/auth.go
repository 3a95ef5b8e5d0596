package server

import "golang.org/x/crypto/bcrypt"

// authRequired reports whether a token hash is configured.
func (s *Server) authRequired() bool {
	return s.config.Auth.TokenHash != ""
}

// checkToken compares a presented token against the configured bcrypt
// hash.
func (s *Server) checkToken(token string) bool {
	if token == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(s.config.Auth.TokenHash), []byte(token))
	return err == nil
}

// HashToken produces a bcrypt hash suitable for the auth.token_hash
// config field.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
