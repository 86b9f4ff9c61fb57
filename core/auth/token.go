package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")

	nowFunc = time.Now // mockable
)

// Claims is the single token payload shared by all roles; which identity
// fields are set depends on the role that logged in.
type Claims struct {
	jwt.RegisteredClaims

	// student sessions
	StudentID string `json:"student_id,omitempty"`
	Username  string `json:"username,omitempty"`
	Standard  string `json:"standard,omitempty"`

	// institutional user sessions
	UserID        string `json:"user_id,omitempty"`
	InstitutionID string `json:"institution_id,omitempty"`

	// parent sessions
	ParentMobile string   `json:"parent_mobile,omitempty"`
	StudentIDs   []string `json:"student_ids,omitempty"`

	Role string `json:"role,omitempty"`
}

// TokenService issues and verifies signed session tokens.
// Tokens are stateless: validity is solely a function of signature and expiry,
// there is no server-side revocation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(conf *core.Config) *TokenService {
	return &TokenService{
		secret: []byte(conf.SecretKey),
		ttl:    conf.JWTExpirationDelta,
	}
}

// Issue signs the claims with an absolute expiry of now + TTL.
func (svc *TokenService) Issue(claims *Claims) (string, error) {
	now := nowFunc()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(svc.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(svc.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Verify checks signature and expiry; it returns ErrInvalidToken on any
// failure (bad signature, malformed token, expired).
func (svc *TokenService) Verify(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return svc.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return nowFunc() }))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// StudentClaims builds the claims carried by a student session.
func StudentClaims(studentID, username, standard string) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  core.Conf.AppName,
			Subject: studentID,
		},
		StudentID: studentID,
		Username:  username,
		Standard:  standard,
		Role:      RoleStudent,
	}
}

// UserClaims builds the claims carried by an institutional user session.
func UserClaims(userID, role, institutionID string) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  core.Conf.AppName,
			Subject: userID,
		},
		UserID:        userID,
		InstitutionID: institutionID,
		Role:          role,
	}
}

// ParentClaims builds the claims carried by a parent session. Parents have no
// stored credential record; the claims plus a fresh linked-student lookup are
// the principal.
func ParentClaims(mobile string, studentIDs []string) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  core.Conf.AppName,
			Subject: "parent_" + mobile,
		},
		ParentMobile: mobile,
		StudentIDs:   studentIDs,
		Role:         RoleParent,
	}
}
