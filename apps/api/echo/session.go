package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core"
	"github.com/edubridge/backend/core/account"
	"github.com/edubridge/backend/core/auth"
	"github.com/edubridge/backend/core/student"
)

const (
	contextClaimsKey  = "claims"
	contextStudentKey = "student"
	contextUserKey    = "user"
	contextParentKey  = "parent"
)

// Parent is the per-request principal of a parent session. Parents have no
// credential record; the claims plus a fresh linked-student lookup are the
// identity.
type Parent struct {
	Mobile   string            `json:"mobile"`
	Students []student.Student `json:"students"`
}

// LinkedTo reports whether the student belongs to this parent.
func (p Parent) LinkedTo(studentID string) bool {
	for _, std := range p.Students {
		if std.ID == studentID {
			return true
		}
	}
	return false
}

// bearerMiddleware verifies the Authorization header and stashes the claims
// in the request context. Any failure maps to 401.
func bearerMiddleware(tokenSvc *auth.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return core.ErrUnauthenticated
			}
			claims, err := tokenSvc.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return core.ErrUnauthenticated
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (*auth.Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*auth.Claims); ok {
		return claims, nil
	}
	return nil, core.ErrUnauthenticated
}

// studentMiddleware resolves the claims to a live student record. Tokens
// outlive accounts; a missing or deactivated record fails authentication.
func studentMiddleware(svc *student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.Role != auth.RoleStudent || claims.StudentID == "" {
				return core.ErrUnauthenticated
			}
			std, err := svc.GetByID(ctx.Request().Context(), claims.StudentID)
			if err != nil {
				if errors.Cause(err) == student.ErrNotFound {
					return core.ErrUnauthenticated
				}
				return errors.Wrap(err, "finding session student")
			}
			if !std.IsActive {
				return core.ErrUnauthenticated
			}
			ctx.Set(contextStudentKey, std)
			return next(ctx)
		}
	}
}

func getContextStudent(ctx echo.Context) (student.Student, error) {
	if std, ok := ctx.Get(contextStudentKey).(student.Student); ok {
		return std, nil
	}
	return student.Student{}, core.ErrUnauthenticated
}

// userMiddleware resolves institutional sessions (admin, teacher, legacy
// parent accounts).
func userMiddleware(svc *account.Service, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.UserID == "" {
				return core.ErrUnauthenticated
			}
			usr, err := svc.GetByID(ctx.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Cause(err) == account.ErrNotFound {
					return core.ErrUnauthenticated
				}
				return errors.Wrap(err, "finding session user")
			}
			if !usr.IsActive {
				return core.ErrUnauthenticated
			}
			if len(roles) > 0 && !hasRole(usr.Role, roles) {
				return core.ErrForbidden
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// parentMiddleware rebuilds the parent principal from the claims with a fresh
// linked-student lookup; the student set in the token is advisory only.
func parentMiddleware(svc *student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.Role != auth.RoleParent || claims.ParentMobile == "" {
				return core.ErrUnauthenticated
			}
			students, err := svc.FindByMobile(ctx.Request().Context(), claims.ParentMobile)
			if err != nil {
				return errors.Wrap(err, "finding linked students")
			}
			if len(students) == 0 {
				return core.ErrUnauthenticated
			}
			ctx.Set(contextParentKey, Parent{Mobile: claims.ParentMobile, Students: students})
			return next(ctx)
		}
	}
}

func getContextParent(ctx echo.Context) (Parent, error) {
	if p, ok := ctx.Get(contextParentKey).(Parent); ok {
		return p, nil
	}
	return Parent{}, core.ErrUnauthenticated
}
