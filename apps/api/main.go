package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edubridge/backend/apps/api/echo"
	"github.com/edubridge/backend/core"
	"github.com/edubridge/backend/core/account"
	"github.com/edubridge/backend/core/auth"
	"github.com/edubridge/backend/core/badge"
	"github.com/edubridge/backend/core/course"
	"github.com/edubridge/backend/core/progress"
	"github.com/edubridge/backend/core/student"
	"github.com/edubridge/backend/services/logger"
	"github.com/edubridge/backend/services/sms"
	"github.com/edubridge/backend/storage/database"
	"github.com/edubridge/backend/storage/database/inmem"
	"github.com/edubridge/backend/storage/database/sqlx"
)

func main() {
	logSvc := logsvc.NewZapLogger(core.Conf)
	defer logSvc.Sync()

	// repositories: postgres in prod, in-memory in dev mode
	var (
		studentRepo  student.Repository
		userRepo     account.Repository
		courseRepo   course.Repository
		progressRepo progress.Repository
		badgeRepo    badge.Repository
	)
	if core.Conf.Database.Engine == "inmem" {
		db, err := inmemdb.Open()
		errAndDie(err)
		studentRepo = inmemdb.NewStudentRepository(db)
		userRepo = inmemdb.NewUserRepository(db)
		courseRepo = inmemdb.NewCourseRepository(db)
		progressRepo = inmemdb.NewProgressRepository(db)
		badgeRepo = inmemdb.NewBadgeRepository(db)
	} else {
		db, err := database.Open(core.Conf)
		errAndDie(err)
		defer db.Close()
		errAndDie(database.Migrate(db))
		studentRepo = sqlxrepos.NewStudentRepository(db)
		userRepo = sqlxrepos.NewUserRepository(db)
		courseRepo = sqlxrepos.NewCourseRepository(db)
		progressRepo = sqlxrepos.NewProgressRepository(db)
		badgeRepo = sqlxrepos.NewBadgeRepository(db)
	}

	// services
	var smsSvc core.SMSService = smssvc.NewConsoleService()
	studentSvc := student.NewService(studentRepo)
	accountSvc := account.NewService(userRepo)
	courseSvc := course.NewService(courseRepo)
	badgeSvc := badge.NewService(badgeRepo)
	progressSvc := progress.NewService(progressRepo, courseSvc, studentSvc, badgeSvc, logSvc)

	validate, translator := core.NewValidator()

	app := echoapi.NewServer(&echoapi.Options{
		Address:     core.Conf.Server.Address(),
		TokenSvc:    auth.NewTokenService(core.Conf),
		OTPIssuer:   auth.NewOTPIssuer(core.Conf),
		SMSSvc:      smsSvc,
		StudentSvc:  studentSvc,
		AccountSvc:  accountSvc,
		CourseSvc:   courseSvc,
		ProgressSvc: progressSvc,
		BadgeSvc:    badgeSvc,
		Logger:      logSvc,
		Validate:    validate,
		Translator:  translator,
	})

	go func() {
		logSvc.Info("starting server", "address", core.Conf.Server.Address())
		app.Start()
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		logSvc.Error("server shutdown failed", err)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
