package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core"
	"github.com/edubridge/backend/core/auth"
	"github.com/edubridge/backend/core/progress"
	"github.com/edubridge/backend/core/student"
)

type usersApi struct {
	studentSvc  *student.Service
	progressSvc *progress.Service
}

// registerUsersAPI mounts the institutional dashboard; admins and teachers
// only.
func registerUsersAPI(g *echo.Group, bearer echo.MiddlewareFunc, opts *Options) {
	api := usersApi{
		studentSvc:  opts.StudentSvc,
		progressSvc: opts.ProgressSvc,
	}

	ug := g.Group("/users", bearer, userMiddleware(opts.AccountSvc, auth.RoleAdmin, auth.RoleTeacher))
	ug.GET("/students", api.listStudents)
}

// StudentOverview is a student row on the institutional dashboard.
type StudentOverview struct {
	student.Student
	CompletedCourses int `json:"completed_courses"`
}

// listStudents returns the standard's students ranked by credits, with
// completion counts.
func (api *usersApi) listStudents(ctx echo.Context) error {
	standard := core.CleanString(ctx.QueryParam("standard"))

	students, err := api.studentSvc.TopStudents(ctx.Request().Context(), standard, 0)
	if err != nil {
		return errors.Wrap(err, "listing students")
	}

	out := make([]StudentOverview, 0, len(students))
	for _, std := range students {
		completed, err := api.progressSvc.CountPassed(ctx.Request().Context(), std.ID)
		if err != nil {
			return errors.Wrap(err, "counting passed courses")
		}
		out = append(out, StudentOverview{Student: std, CompletedCourses: completed})
	}
	return ctx.JSON(http.StatusOK, out)
}
