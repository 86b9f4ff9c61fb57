package student

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/edubridge/backend/core"
)

// CreditsPerLevel is the credit span of one level: level = total/500 + 1.
const CreditsPerLevel = 500

// Student is the learner record. TotalCredits and Level are derived state
// recomputed by the progression engine on quiz passes; they are never
// assigned directly by handlers.
type Student struct {
	ID           string    `json:"student_id" db:"student_id"`
	Name         string    `json:"name" db:"name"`
	Username     string    `json:"username" db:"username"`
	Mobile       string    `json:"mobile" db:"mobile"`
	Standard     string    `json:"standard" db:"standard"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	TotalCredits int       `json:"total_credits" db:"total_credits"`
	Level        int       `json:"level" db:"level"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	LastLogin    time.Time `json:"last_login" db:"last_login"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// Level derived from a credit total.
func LevelForCredits(total int) int {
	return total/CreditsPerLevel + 1
}

// CreditsToNextLevel is clamped at zero for totals already past the boundary.
func (s *Student) CreditsToNextLevel() int {
	remaining := s.Level*CreditsPerLevel - s.TotalCredits
	if remaining < 0 {
		return 0
	}
	return remaining
}

// NewStudent contains information needed to register a new Student.
// The username is generated, not supplied.
type NewStudent struct {
	Name            string `json:"name" validate:"required"`
	Mobile          string `json:"mobile" validate:"required,mobile"`
	Standard        string `json:"standard" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Mobile = core.CleanString(ns.Mobile)
	ns.Standard = core.CleanString(ns.Standard)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkMobileUniqueness(ns.Mobile)
}

var usernameCleanRegex = regexp.MustCompile(`[^a-z0-9_]`)

// generateUsername derives `base_nnn` from the student name with 3 random
// digits, retrying on collision via the taken func.
func generateUsername(name string, taken func(string) bool) (string, error) {
	base := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	base = usernameCleanRegex.ReplaceAllString(base, "")
	if base == "" {
		base = "student"
	}

	for {
		n, err := rand.Int(rand.Reader, big.NewInt(1000))
		if err != nil {
			return "", err
		}
		username := base + "_" + pad3(int(n.Int64()))
		if !taken(username) {
			return username, nil
		}
	}
}

func pad3(n int) string {
	digits := []byte{'0', '0', '0'}
	for i := 2; i >= 0 && n > 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits)
}
