package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edubridge/backend/core/progress"
)

type progressApi struct {
	progressSvc *progress.Service
	validate    *validator.Validate
}

func registerProgressAPI(g *echo.Group, bearer echo.MiddlewareFunc, opts *Options) {
	api := progressApi{
		progressSvc: opts.ProgressSvc,
		validate:    opts.Validate,
	}

	pg := g.Group("/progress", bearer, studentMiddleware(opts.StudentSvc))
	pg.POST("/start", api.start)
	pg.PUT("/video-complete", api.videoComplete)
	pg.POST("/submit-quiz", api.submitQuiz)
	pg.GET("/my-progress", api.myProgress)
}

// Handlers

func (api *progressApi) start(ctx echo.Context) error {
	var data StartProgressRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StartProgressRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	p, created, err := api.progressSvc.Start(ctx.Request().Context(), std, data.CourseID)
	if err != nil {
		return err
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	return ctx.JSON(code, p)
}

func (api *progressApi) videoComplete(ctx echo.Context) error {
	var data VideoCompleteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VideoCompleteRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	res, err := api.progressSvc.RecordWatch(ctx.Request().Context(), std, data.CourseID, data.WatchDuration)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *progressApi) submitQuiz(ctx echo.Context) error {
	var data SubmitQuizRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitQuizRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	res, err := api.progressSvc.SubmitQuiz(ctx.Request().Context(), std, data.QuizID, data.Answers)
	if err != nil {
		return err
	}
	recordSubmission(res.Passed, res.CreditsEarned, len(res.NewBadges))
	return ctx.JSON(http.StatusOK, res)
}

func (api *progressApi) myProgress(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	list, err := api.progressSvc.ByStudent(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "listing progress")
	}
	return ctx.JSON(http.StatusOK, list)
}

type (
	StartProgressRequest struct {
		CourseID string `json:"course_id" validate:"required"`
	}

	VideoCompleteRequest struct {
		CourseID      string `json:"course_id" validate:"required"`
		WatchDuration int    `json:"watch_duration"`
	}

	SubmitQuizRequest struct {
		QuizID  string            `json:"quiz_id" validate:"required"`
		Answers map[string]string `json:"answers"`
	}
)
