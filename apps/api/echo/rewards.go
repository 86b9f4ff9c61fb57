package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core/badge"
	"github.com/edubridge/backend/core/course"
	"github.com/edubridge/backend/core/progress"
)

type rewardsApi struct {
	progressSvc *progress.Service
	courseSvc   *course.Service
	badgeSvc    *badge.Service
}

func registerRewardsAPI(g *echo.Group, bearer echo.MiddlewareFunc, opts *Options) {
	api := rewardsApi{
		progressSvc: opts.ProgressSvc,
		courseSvc:   opts.CourseSvc,
		badgeSvc:    opts.BadgeSvc,
	}

	rg := g.Group("/rewards", bearer, studentMiddleware(opts.StudentSvc))
	rg.GET("/stats", api.stats)
	rg.GET("/my-badges", api.myBadges)
	rg.GET("/badges", api.catalog)
}

// StatsResponse is the student's progression snapshot plus catalog totals.
type StatsResponse struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Standard string `json:"standard"`
	progress.Stats
	TotalCourses       int `json:"total_courses"`
	ProgressPercentage int `json:"progress_percentage"`
}

func (api *rewardsApi) stats(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	stats, err := api.progressSvc.StatsFor(ctx.Request().Context(), std)
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	total, err := api.courseSvc.CountByStandard(ctx.Request().Context(), std.Standard)
	if err != nil {
		return errors.Wrap(err, "counting courses")
	}

	res := StatsResponse{
		Name:         std.Name,
		Username:     std.Username,
		Standard:     std.Standard,
		Stats:        stats,
		TotalCourses: total,
	}
	if total > 0 {
		res.ProgressPercentage = stats.CompletedCourses * 100 / total
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *rewardsApi) myBadges(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	earned, err := api.badgeSvc.EarnedByStudent(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "listing earned badges")
	}
	return ctx.JSON(http.StatusOK, earned)
}

func (api *rewardsApi) catalog(ctx echo.Context) error {
	badges, err := api.badgeSvc.Catalog(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing badge catalog")
	}
	if badges == nil {
		badges = []badge.Badge{}
	}
	return ctx.JSON(http.StatusOK, badges)
}
