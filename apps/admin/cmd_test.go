package main

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edubridge/backend/core/badge"
	"github.com/edubridge/backend/core/course"
	"github.com/edubridge/backend/core/student"
	"github.com/edubridge/backend/storage/database/inmem"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags)

	db, err := inmemdb.Open()
	require.NoError(t, err)

	return &commandLine{
		studentSvc: student.NewService(inmemdb.NewStudentRepository(db)),
		courseSvc:  course.NewService(inmemdb.NewCourseRepository(db)),
		badgeSvc:   badge.NewService(inmemdb.NewBadgeRepository(db)),
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	migrateFunc = func(db *sqlx.DB) error { return nil }

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate", args: []string{"migrate"}},
		{name: "addstudent: no args", args: []string{"addstudent"}, wantErr: errHelp},
		{name: "addstudent: no password", args: []string{"addstudent", "-name", "Amani B", "-mobile", "9876543210", "-standard", "6"}, wantErr: errHelp},
		{name: "addstudent", args: []string{"addstudent", "-name", "Amani B", "-mobile", "9876543210", "-standard", "6"}, pwd: "s3cret"},
		{name: "resetpassword: no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "resetpassword: no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "resetpassword: student not found", args: []string{"resetpassword", "-username", "lol"}, pwd: "s3cret", wantErr: student.ErrNotFound},
		{name: "seed", args: []string{"seed"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	std, err := cli.studentSvc.Register(context.Background(), student.NewStudent{
		Name:            "Neema K",
		Mobile:          "9876500000",
		Standard:        "10",
		Password:        "oldpass",
		PasswordConfirm: "oldpass",
	})
	require.NoError(t, err)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("newpass"), nil }
	require.NoError(t, cli.run([]string{"admin", "resetpassword", "-username", std.Username}))

	refreshed, err := cli.studentSvc.GetByUsername(context.Background(), std.Username)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("newpass"))
	assert.Error(t, refreshed.CheckPassword("oldpass"))
}
