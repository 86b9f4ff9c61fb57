package main

import (
	"context"

	"github.com/edubridge/backend/core"
	"github.com/edubridge/backend/core/student"
)

// addStudent registers a student with a generated username.
func (cli *commandLine) addStudent(name, mobile, standard, pwd string) error {
	ctx := context.Background()
	ns := student.NewStudent{
		Name:            core.CleanString(name),
		Mobile:          core.CleanString(mobile),
		Standard:        core.CleanString(standard),
		Password:        pwd,
		PasswordConfirm: pwd,
	}

	std, err := cli.studentSvc.Register(ctx, ns)
	if err != nil {
		return err
	}
	logger.Printf("created student %q (username %s)", std.Name, std.Username)
	return nil
}
