package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core/student"
)

type leaderboardApi struct {
	studentSvc *student.Service
}

func registerLeaderboardAPI(g *echo.Group, opts *Options) {
	api := leaderboardApi{studentSvc: opts.StudentSvc}

	// public: usernames and credit totals only
	g.GET("/leaderboard", api.leaderboard)
}

// LeaderboardEntry is a ranked slice of a student's public fields.
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	StudentID    string `json:"student_id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Standard     string `json:"standard"`
	TotalCredits int    `json:"total_credits"`
	Level        int    `json:"level"`
}

func (api *leaderboardApi) leaderboard(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))

	top, err := api.studentSvc.TopStudents(ctx.Request().Context(), ctx.QueryParam("standard"), limit)
	if err != nil {
		return errors.Wrap(err, "querying top students")
	}

	out := make([]LeaderboardEntry, 0, len(top))
	for i, std := range top {
		out = append(out, LeaderboardEntry{
			Rank:         i + 1,
			StudentID:    std.ID,
			Name:         std.Name,
			Username:     std.Username,
			Standard:     std.Standard,
			TotalCredits: std.TotalCredits,
			Level:        std.Level,
		})
	}
	return ctx.JSON(http.StatusOK, out)
}
