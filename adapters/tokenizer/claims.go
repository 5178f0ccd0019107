package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are the standard claims carried by an access token. The
// subject is the lowercase wallet address; the JWT ID doubles as the
// session ID used for revocation.
type AccessClaims struct {
	jwt.RegisteredClaims
}
