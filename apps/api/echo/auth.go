package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core"
	"github.com/edubridge/backend/core/account"
	"github.com/edubridge/backend/core/auth"
	"github.com/edubridge/backend/core/student"
)

var errNoLinkedStudents = echo.NewHTTPError(http.StatusNotFound, "no students found with this mobile number")

type authApi struct {
	tokenSvc   *auth.TokenService
	otpIssuer  auth.OTPIssuer
	smsSvc     core.SMSService
	studentSvc *student.Service
	accountSvc *account.Service
	validate   *validator.Validate
}

func registerAuthAPI(g *echo.Group, bearer echo.MiddlewareFunc, opts *Options) {
	api := authApi{
		tokenSvc:   opts.TokenSvc,
		otpIssuer:  opts.OTPIssuer,
		smsSvc:     opts.SMSSvc,
		studentSvc: opts.StudentSvc,
		accountSvc: opts.AccountSvc,
		validate:   opts.Validate,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	// TODO: rate limit `/parent/send-otp`
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
	ag.POST("/users/register", api.registerUser)
	ag.POST("/users/login", api.loginUser)
	ag.POST("/parent/send-otp", api.sendParentOTP)
	ag.POST("/parent/verify-otp", api.verifyParentOTP)

	ag.GET("/me", api.me, bearer)
}

// Handlers

func (api *authApi) register(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate, api.studentSvc); err != nil {
		return err
	}

	std, err := api.studentSvc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}

	token, err := api.tokenSvc.Issue(auth.StudentClaims(std.ID, std.Username, std.Standard))
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}
	return ctx.JSON(http.StatusCreated, StudentTokenResponse{Token: token, Student: std})
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.studentSvc.GetByUsername(ctx.Request().Context(), data.Username)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "finding student by username")
	}
	if err := std.CheckPassword(data.Password); err != nil {
		return errAuthenticationFailed
	}
	if !std.IsActive {
		return errAuthenticationFailed
	}
	if std, err = api.studentSvc.SetLastLogin(ctx.Request().Context(), std); err != nil {
		return errors.Wrap(err, "setting lastLogin")
	}

	token, err := api.tokenSvc.Issue(auth.StudentClaims(std.ID, std.Username, std.Standard))
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}
	return ctx.JSON(http.StatusOK, StudentTokenResponse{Token: token, Student: std})
}

func (api *authApi) registerUser(ctx echo.Context) error {
	var data account.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate, api.accountSvc); err != nil {
		return err
	}

	usr, err := api.accountSvc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}

	token, err := api.tokenSvc.Issue(auth.UserClaims(usr.ID, usr.Role, usr.InstitutionID))
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}
	return ctx.JSON(http.StatusCreated, UserTokenResponse{Token: token, User: usr})
}

func (api *authApi) loginUser(ctx echo.Context) error {
	var data UserLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UserLoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.accountSvc.GetByInstitutionID(ctx.Request().Context(), data.InstitutionID)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "finding user by institution ID")
	}
	if err := usr.CheckPassword(data.Password); err != nil {
		return errAuthenticationFailed
	}
	if !usr.IsActive {
		return errAuthenticationFailed
	}
	if usr, err = api.accountSvc.SetLastLogin(ctx.Request().Context(), usr); err != nil {
		return errors.Wrap(err, "setting lastLogin")
	}

	token, err := api.tokenSvc.Issue(auth.UserClaims(usr.ID, usr.Role, usr.InstitutionID))
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}
	return ctx.JSON(http.StatusOK, UserTokenResponse{Token: token, User: usr})
}

// sendParentOTP issues a passcode for the mobile number when at least one
// student is registered under it. The code is echoed in the response for
// clients without SMS delivery configured.
func (api *authApi) sendParentOTP(ctx echo.Context) error {
	var data ParentOTPRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ParentOTPRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	students, err := api.studentSvc.FindByMobile(ctx.Request().Context(), data.Mobile)
	if err != nil {
		return errors.Wrap(err, "finding students by mobile")
	}
	if len(students) == 0 {
		return errNoLinkedStudents
	}

	code, err := api.otpIssuer.Issue(data.Mobile)
	if err != nil {
		return errors.Wrap(err, "issuing otp")
	}
	otpIssuedTotal.Inc()
	api.smsSvc.SendMessages(&core.TextMessage{
		To:   data.Mobile,
		Body: "Your login code is " + code,
	})

	return ctx.JSON(http.StatusOK, ParentOTPResponse{
		Message:       "OTP sent successfully",
		OTP:           code,
		StudentsCount: len(students),
	})
}

func (api *authApi) verifyParentOTP(ctx echo.Context) error {
	var data ParentOTPVerifyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ParentOTPVerifyRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if !api.otpIssuer.Verify(data.Mobile, data.OTP) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired OTP")
	}

	students, err := api.studentSvc.FindByMobile(ctx.Request().Context(), data.Mobile)
	if err != nil {
		return errors.Wrap(err, "finding students by mobile")
	}
	if len(students) == 0 {
		return errNoLinkedStudents
	}

	ids := make([]string, len(students))
	for i, std := range students {
		ids[i] = std.ID
	}
	token, err := api.tokenSvc.Issue(auth.ParentClaims(data.Mobile, ids))
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}
	return ctx.JSON(http.StatusOK, ParentTokenResponse{
		Token:    token,
		Mobile:   data.Mobile,
		Students: students,
	})
}

// me resolves the session principal from the claims, whatever its role.
func (api *authApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	switch claims.Role {
	case auth.RoleStudent:
		std, err := api.studentSvc.GetByID(ctx.Request().Context(), claims.StudentID)
		if err != nil {
			return core.ErrUnauthenticated
		}
		return ctx.JSON(http.StatusOK, echo.Map{"role": claims.Role, "student": std})
	case auth.RoleParent:
		students, err := api.studentSvc.FindByMobile(ctx.Request().Context(), claims.ParentMobile)
		if err != nil || len(students) == 0 {
			return core.ErrUnauthenticated
		}
		return ctx.JSON(http.StatusOK, echo.Map{
			"role":   claims.Role,
			"parent": Parent{Mobile: claims.ParentMobile, Students: students},
		})
	default:
		usr, err := api.accountSvc.GetByID(ctx.Request().Context(), claims.UserID)
		if err != nil {
			return core.ErrUnauthenticated
		}
		return ctx.JSON(http.StatusOK, echo.Map{"role": usr.Role, "user": usr})
	}
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	UserLoginRequest struct {
		InstitutionID string `json:"institution_id" validate:"required"`
		Password      string `json:"password" validate:"required"`
	}

	ParentOTPRequest struct {
		Mobile string `json:"mobile" validate:"required,mobile"`
	}

	ParentOTPVerifyRequest struct {
		Mobile string `json:"mobile" validate:"required,mobile"`
		OTP    string `json:"otp" validate:"required,otp"`
	}

	StudentTokenResponse struct {
		Token   string          `json:"token"`
		Student student.Student `json:"student"`
	}

	UserTokenResponse struct {
		Token string       `json:"token"`
		User  account.User `json:"user"`
	}

	ParentTokenResponse struct {
		Token    string            `json:"token"`
		Mobile   string            `json:"mobile"`
		Students []student.Student `json:"students"`
	}

	ParentOTPResponse struct {
		Message       string `json:"message"`
		OTP           string `json:"otp"`
		StudentsCount int    `json:"students_count"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (lr *UserLoginRequest) Validate(validate *validator.Validate) error {
	lr.InstitutionID = core.CleanString(lr.InstitutionID)
	return validate.Struct(lr)
}

func (pr *ParentOTPRequest) Validate(validate *validator.Validate) error {
	pr.Mobile = core.CleanString(pr.Mobile)
	return validate.Struct(pr)
}

func (pr *ParentOTPVerifyRequest) Validate(validate *validator.Validate) error {
	pr.Mobile = core.CleanString(pr.Mobile)
	pr.OTP = core.CleanString(pr.OTP)
	return validate.Struct(pr)
}
