package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core"
	"github.com/edubridge/backend/core/course"
	"github.com/edubridge/backend/core/progress"
	"github.com/edubridge/backend/core/student"
)

type parentApi struct {
	studentSvc  *student.Service
	courseSvc   *course.Service
	progressSvc *progress.Service
}

func registerParentAPI(g *echo.Group, bearer echo.MiddlewareFunc, opts *Options) {
	api := parentApi{
		studentSvc:  opts.StudentSvc,
		courseSvc:   opts.CourseSvc,
		progressSvc: opts.ProgressSvc,
	}

	pg := g.Group("/parent", bearer, parentMiddleware(opts.StudentSvc))
	pg.GET("/children", api.children)
	pg.GET("/progress/:studentID", api.childProgress)
}

type (
	// ChildSummary is a linked student with completion totals.
	ChildSummary struct {
		student.Student
		CompletedCourses   int `json:"completed_courses"`
		TotalCourses       int `json:"total_courses"`
		ProgressPercentage int `json:"progress_percentage"`
	}

	// ProgressWithCourse annotates a progress row with its course for
	// display without extra roundtrips.
	ProgressWithCourse struct {
		progress.Progress
		CourseInfo *course.Course `json:"course_info"`
	}

	ChildProgressResponse struct {
		Student  student.Student      `json:"student"`
		Progress []ProgressWithCourse `json:"progress"`
	}
)

func (api *parentApi) children(ctx echo.Context) error {
	parent, err := getContextParent(ctx)
	if err != nil {
		return err
	}

	out := make([]ChildSummary, 0, len(parent.Students))
	for _, std := range parent.Students {
		completed, err := api.progressSvc.CountPassed(ctx.Request().Context(), std.ID)
		if err != nil {
			return errors.Wrap(err, "counting passed courses")
		}
		total, err := api.courseSvc.CountByStandard(ctx.Request().Context(), std.Standard)
		if err != nil {
			return errors.Wrap(err, "counting courses")
		}

		summary := ChildSummary{
			Student:          std,
			CompletedCourses: completed,
			TotalCourses:     total,
		}
		if total > 0 {
			summary.ProgressPercentage = completed * 100 / total
		}
		out = append(out, summary)
	}
	return ctx.JSON(http.StatusOK, out)
}

func (api *parentApi) childProgress(ctx echo.Context) error {
	parent, err := getContextParent(ctx)
	if err != nil {
		return err
	}

	studentID := ctx.Param("studentID")
	if !parent.LinkedTo(studentID) {
		return core.ErrForbidden
	}

	std, err := api.studentSvc.GetByID(ctx.Request().Context(), studentID)
	if err != nil {
		return err
	}

	list, err := api.progressSvc.ByStudent(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "listing progress")
	}

	out := make([]ProgressWithCourse, 0, len(list))
	for _, p := range list {
		entry := ProgressWithCourse{Progress: p}
		if crs, err := api.courseSvc.GetByID(ctx.Request().Context(), p.CourseID); err == nil {
			crs := crs
			entry.CourseInfo = &crs
		}
		out = append(out, entry)
	}
	return ctx.JSON(http.StatusOK, ChildProgressResponse{Student: std, Progress: out})
}
