package student_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edubridge/backend/core"
	"github.com/edubridge/backend/core/student"
	"github.com/edubridge/backend/storage/database/inmem"
)

func setup(t *testing.T) *student.Service {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return student.NewService(inmemdb.NewStudentRepository(db))
}

func register(t *testing.T, svc *student.Service, name, mobile, standard string) student.Student {
	t.Helper()
	std, err := svc.Register(context.Background(), student.NewStudent{
		Name:            name,
		Mobile:          mobile,
		Standard:        standard,
		Password:        "s3cret",
		PasswordConfirm: "s3cret",
	})
	require.NoError(t, err)
	return std
}

func Test_Service_Register(t *testing.T) {
	svc := setup(t)

	std := register(t, svc, "Nanda", "9876543210", "6")
	assert.NotEmpty(t, std.ID)
	assert.NotEmpty(t, std.Username)
	assert.True(t, std.IsActive)
	assert.Equal(t, 0, std.TotalCredits)
	assert.Equal(t, 1, std.Level)
	assert.NoError(t, std.CheckPassword("s3cret"))
}

func Test_NewStudent_Validate_duplicateMobile(t *testing.T) {
	svc := setup(t)
	validate, _ := core.NewValidator()

	register(t, svc, "Nanda", "9876543210", "6")

	ns := student.NewStudent{
		Name:            "Imposter",
		Mobile:          "9876543210",
		Standard:        "6",
		Password:        "s3cret",
		PasswordConfirm: "s3cret",
	}
	err := ns.Validate(validate, svc)
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "mobile", vErr.Fields[0].Field)
}

func Test_NewStudent_Validate_fieldRules(t *testing.T) {
	svc := setup(t)
	validate, _ := core.NewValidator()

	tests := []struct {
		name string
		ns   student.NewStudent
	}{
		{name: "bad mobile", ns: student.NewStudent{Name: "A", Mobile: "12345", Standard: "6", Password: "s3cret", PasswordConfirm: "s3cret"}},
		{name: "short password", ns: student.NewStudent{Name: "A", Mobile: "9876543210", Standard: "6", Password: "abc", PasswordConfirm: "abc"}},
		{name: "password mismatch", ns: student.NewStudent{Name: "A", Mobile: "9876543210", Standard: "6", Password: "s3cret", PasswordConfirm: "other"}},
		{name: "missing standard", ns: student.NewStudent{Name: "A", Mobile: "9876543210", Password: "s3cret", PasswordConfirm: "s3cret"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.ns.Validate(validate, svc))
		})
	}
}

func Test_Service_FindByMobile(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	a := register(t, svc, "Amani", "9876543210", "6")
	b := register(t, svc, "Baraka", "9876543211", "10")

	linked, err := svc.FindByMobile(ctx, "9876543210")
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, a.ID, linked[0].ID)

	linked, err = svc.FindByMobile(ctx, "9876543211")
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, b.ID, linked[0].ID)

	linked, err = svc.FindByMobile(ctx, "0000000000")
	require.NoError(t, err)
	assert.Empty(t, linked)
}

func Test_Service_AddCredits(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	std := register(t, svc, "Nanda", "9876543210", "6")

	total, level, err := svc.AddCredits(ctx, std.ID, 480)
	require.NoError(t, err)
	assert.Equal(t, 480, total)
	assert.Equal(t, 1, level)

	total, level, err = svc.AddCredits(ctx, std.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, 580, total)
	assert.Equal(t, 2, level)

	_, _, err = svc.AddCredits(ctx, "nope", 10)
	assert.Equal(t, student.ErrNotFound, err)
}

func Test_Service_TopStudents(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	a := register(t, svc, "Amani", "9876543210", "6")
	b := register(t, svc, "Baraka", "9876543211", "6")
	c := register(t, svc, "Chiku", "9876543212", "10")

	_, _, err := svc.AddCredits(ctx, a.ID, 100)
	require.NoError(t, err)
	_, _, err = svc.AddCredits(ctx, b.ID, 300)
	require.NoError(t, err)
	_, _, err = svc.AddCredits(ctx, c.ID, 200)
	require.NoError(t, err)

	top, err := svc.TopStudents(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, b.ID, top[0].ID)
	assert.Equal(t, c.ID, top[1].ID)
	assert.Equal(t, a.ID, top[2].ID)

	top, err = svc.TopStudents(ctx, "6", 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, b.ID, top[0].ID)
}
