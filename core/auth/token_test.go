package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edubridge/backend/core"
)

func newTestTokenService(ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte("secret"), ttl: ttl}
}

func TestTokenService_IssueVerify(t *testing.T) {
	svc := newTestTokenService(15 * 24 * time.Hour)

	claims := StudentClaims("sid-1", "alice_042", "10th")
	token, err := svc.Issue(claims)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	got, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	assert.Equal(t, "sid-1", got.StudentID)
	assert.Equal(t, "alice_042", got.Username)
	assert.Equal(t, "10th", got.Standard)
	assert.Equal(t, RoleStudent, got.Role)
	assert.Equal(t, core.Conf.AppName, got.Issuer)
}

func TestTokenService_VerifyParentClaims(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	claims := ParentClaims("9876543210", []string{"sid-1", "sid-2"})
	token, err := svc.Issue(claims)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	got, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	assert.Equal(t, RoleParent, got.Role)
	assert.Equal(t, "9876543210", got.ParentMobile)
	assert.Equal(t, []string{"sid-1", "sid-2"}, got.StudentIDs)
}

func TestTokenService_VerifyFailures(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	validToken, err := svc.Issue(UserClaims("uid-1", RoleAdmin, "INST-1"))
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	// token signed with a different secret
	otherSvc := newTestTokenService(time.Hour)
	otherSvc.secret = []byte("not-the-secret")
	foreignToken, err := otherSvc.Issue(UserClaims("uid-1", RoleAdmin, "INST-1"))
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "lmaooolol"},
		{name: "tampered token", token: validToken + "x"},
		{name: "bad signature", token: foreignToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.token); err != ErrInvalidToken {
				t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}

func TestTokenService_VerifyExpired(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	// issue a token 2h in the past
	nowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.Issue(StudentClaims("sid-1", "alice_042", "10th"))
	nowFunc = time.Now // reset
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if _, err := svc.Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
	}
}
