package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core/course"
	"github.com/edubridge/backend/core/progress"
)

type courseApi struct {
	courseSvc   *course.Service
	progressSvc *progress.Service
}

func registerCourseAPI(g *echo.Group, bearer echo.MiddlewareFunc, opts *Options) {
	api := courseApi{
		courseSvc:   opts.CourseSvc,
		progressSvc: opts.ProgressSvc,
	}

	cg := g.Group("/courses", bearer, studentMiddleware(opts.StudentSvc))
	cg.GET("", api.list)
	cg.GET("/:id", api.retrieve)
	cg.GET("/:id/quiz", api.quiz)
}

// CourseWithProgress is a catalog entry annotated with the student's own
// progress, nil when the course was never started.
type CourseWithProgress struct {
	course.Course
	Progress *progress.Progress `json:"progress"`
}

// list returns the courses of the student's standard with their progress.
func (api *courseApi) list(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	courses, err := api.courseSvc.ListByStandard(ctx.Request().Context(), std.Standard)
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}

	progressList, err := api.progressSvc.ByStudent(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "listing progress")
	}
	byCourse := make(map[string]progress.Progress, len(progressList))
	for _, p := range progressList {
		byCourse[p.CourseID] = p
	}

	out := make([]CourseWithProgress, 0, len(courses))
	for _, crs := range courses {
		entry := CourseWithProgress{Course: crs}
		if p, ok := byCourse[crs.ID]; ok {
			p := p
			entry.Progress = &p
		}
		out = append(out, entry)
	}
	return ctx.JSON(http.StatusOK, out)
}

// retrieve returns one course with the student's progress, creating the
// progress record on first visit.
func (api *courseApi) retrieve(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	crs, err := api.courseSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if crs.Standard != std.Standard {
		return progress.ErrStandardMismatch
	}

	p, _, err := api.progressSvc.Start(ctx.Request().Context(), std, crs.ID)
	if err != nil {
		return errors.Wrap(err, "starting progress")
	}
	return ctx.JSON(http.StatusOK, CourseWithProgress{Course: crs, Progress: &p})
}

func (api *courseApi) quiz(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	qz, err := api.progressSvc.FetchQuiz(ctx.Request().Context(), std, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, qz)
}
