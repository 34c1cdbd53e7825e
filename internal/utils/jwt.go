package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/sha256" // SHA-256 hashing for stored session tokens
    "encoding/hex"  // hex encoding of digests
    "errors"        // sentinel for parse failures
    "time"          // expiration handling

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed HS256 JWT along with its expiry.
// The Token field contains the serialized JWT string. Access tokens
// are carried in the Authorization header on protected endpoints;
// the server additionally keeps a hashed session row per issued
// token so that logout can invalidate a token before it expires.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// ErrInvalidToken is returned by ParseAccessToken when the token is
// malformed, signed with an unexpected method, or expired.
var ErrInvalidToken = errors.New("invalid access token")

// NewAccessToken builds and signs an HS256 JWT for a user. It takes
// the signing secret, the user ID, the user's role group, and a TTL
// in minutes. The JWT carries the standard claims: subject (sub),
// role, expiration (exp) and issued at (iat).
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates a serialized JWT against the secret and
// returns the subject user ID and role claim. Tokens signed with a
// non-HMAC method are rejected.
func ParseAccessToken(secret, raw string) (userID uint64, role string, err error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return 0, "", ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, "", ErrInvalidToken
    }
    sub, ok := claims["sub"].(float64) // numeric claims decode as float64
    if !ok {
        return 0, "", ErrInvalidToken
    }
    role, _ = claims["role"].(string)
    return uint64(sub), role, nil
}

// HashSessionToken returns the SHA-256 hash of a bearer token as a
// hex string. Only the hash is persisted in user_sessions, so a
// leaked database dump cannot be replayed as live sessions.
func HashSessionToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}
