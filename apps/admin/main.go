package main

import (
	"log"
	"os"

	"github.com/edubridge/backend/core"
	"github.com/edubridge/backend/core/badge"
	"github.com/edubridge/backend/core/course"
	"github.com/edubridge/backend/core/student"
	"github.com/edubridge/backend/storage/database"
	"github.com/edubridge/backend/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer db.Close()

	// start CLI
	cli := commandLine{
		db:         db,
		studentSvc: student.NewService(sqlxrepos.NewStudentRepository(db)),
		courseSvc:  course.NewService(sqlxrepos.NewCourseRepository(db)),
		badgeSvc:   badge.NewService(sqlxrepos.NewBadgeRepository(db)),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
