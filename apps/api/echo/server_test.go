package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edubridge/backend/core"
	"github.com/edubridge/backend/core/account"
	"github.com/edubridge/backend/core/auth"
	"github.com/edubridge/backend/core/badge"
	"github.com/edubridge/backend/core/course"
	"github.com/edubridge/backend/core/progress"
	"github.com/edubridge/backend/core/student"
	"github.com/edubridge/backend/services/sms/dummy"
	"github.com/edubridge/backend/storage/database/inmem"
)

type testServer struct {
	Server
	studentSvc *student.Service
	courseSvc  *course.Service
	badgeSvc   *badge.Service
	smsSvc     interface{ SentMessages() []core.TextMessage }
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)

	studentSvc := student.NewService(inmemdb.NewStudentRepository(db))
	accountSvc := account.NewService(inmemdb.NewUserRepository(db))
	courseSvc := course.NewService(inmemdb.NewCourseRepository(db))
	badgeSvc := badge.NewService(inmemdb.NewBadgeRepository(db))
	progressSvc := progress.NewService(
		inmemdb.NewProgressRepository(db), courseSvc, studentSvc, badgeSvc, core.NopLogger{},
	)

	smsSvc := dummysms.NewService()
	validate, translator := core.NewValidator()

	srv := NewServer(&Options{
		Address:        "localhost:0",
		DisableReqLogs: true,
		TokenSvc:       auth.NewTokenService(core.Conf),
		OTPIssuer:      auth.NewOTPIssuer(core.Conf),
		SMSSvc:         smsSvc,
		StudentSvc:     studentSvc,
		AccountSvc:     accountSvc,
		CourseSvc:      courseSvc,
		ProgressSvc:    progressSvc,
		BadgeSvc:       badgeSvc,
		Logger:         core.NopLogger{},
		Validate:       validate,
		Translator:     translator,
	})
	return &testServer{
		Server:     srv,
		studentSvc: studentSvc,
		courseSvc:  courseSvc,
		badgeSvc:   badgeSvc,
		smsSvc:     smsSvc,
	}
}

func (ts *testServer) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}

func (ts *testServer) registerStudent(t *testing.T, name, mobile, standard string) (student.Student, string) {
	t.Helper()
	rec := ts.request(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name":             name,
		"mobile":           mobile,
		"standard":         standard,
		"password":         "s3cret",
		"password_confirm": "s3cret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res StudentTokenResponse
	decode(t, rec, &res)
	return res.Student, res.Token
}

func (ts *testServer) createCourseWithQuiz(t *testing.T, standard string, duration, credits, passingScore int) (course.Course, course.Quiz) {
	t.Helper()
	ctx := context.Background()
	crs, err := ts.courseSvc.Create(ctx, course.Course{
		ID:              uuid.NewString(),
		Title:           "Photosynthesis",
		Standard:        standard,
		Subject:         "Science",
		VideoURL:        "https://example.com/v",
		DurationMinutes: duration,
		Credits:         credits,
	})
	require.NoError(t, err)

	qz, err := ts.courseSvc.CreateQuiz(ctx, course.Quiz{
		ID:       uuid.NewString(),
		CourseID: crs.ID,
		Title:    "Photosynthesis Quiz",
		Questions: []course.Question{
			{Text: "Q1", Options: []string{"a", "b"}, CorrectAnswer: "a"},
			{Text: "Q2", Options: []string{"a", "b"}, CorrectAnswer: "b"},
			{Text: "Q3", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		},
		PassingScore: &passingScore,
	})
	require.NoError(t, err)
	return crs, qz
}

func Test_auth_studentRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	std, _ := ts.registerStudent(t, "Nanda", "9876543210", "6")
	assert.NotEmpty(t, std.Username)

	// duplicate mobile rejected
	rec := ts.request(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name": "Imposter", "mobile": "9876543210", "standard": "6",
		"password": "s3cret", "password_confirm": "s3cret",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// login with the generated username
	rec = ts.request(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": std.Username, "password": "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res StudentTokenResponse
	decode(t, rec, &res)
	assert.NotEmpty(t, res.Token)
	assert.False(t, res.Student.LastLogin.IsZero())

	// wrong password
	rec = ts.request(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": std.Username, "password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// me
	rec = ts.request(t, http.MethodGet, "/v1/auth/me", res.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_auth_institutionalUser(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/v1/auth/users/register", "", map[string]string{
		"institution_id": "TCH001",
		"email":          "teacher@school.test",
		"full_name":      "Mw Alimu",
		"mobile":         "9876500001",
		"role":           "teacher",
		"password":       "s3cret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// duplicate institution id
	rec = ts.request(t, http.MethodPost, "/v1/auth/users/register", "", map[string]string{
		"institution_id": "TCH001",
		"email":          "other@school.test",
		"full_name":      "Other",
		"mobile":         "9876500002",
		"role":           "teacher",
		"password":       "s3cret",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.request(t, http.MethodPost, "/v1/auth/users/login", "", map[string]string{
		"institution_id": "TCH001", "password": "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var res UserTokenResponse
	decode(t, rec, &res)
	assert.Equal(t, "teacher", res.User.Role)

	rec = ts.request(t, http.MethodGet, "/v1/auth/me", res.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_users_studentDashboard(t *testing.T) {
	ts := newTestServer(t)
	a, _ := ts.registerStudent(t, "Amani", "9876543210", "6")
	b, _ := ts.registerStudent(t, "Baraka", "9876543211", "6")

	_, _, err := ts.studentSvc.AddCredits(context.Background(), b.ID, 200)
	require.NoError(t, err)

	register := func(instID, email, mobile, role string) string {
		rec := ts.request(t, http.MethodPost, "/v1/auth/users/register", "", map[string]string{
			"institution_id": instID,
			"email":          email,
			"full_name":      "Staff",
			"mobile":         mobile,
			"role":           role,
			"password":       "s3cret",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var res UserTokenResponse
		decode(t, rec, &res)
		return res.Token
	}
	teacherToken := register("TCH001", "t@school.test", "9876500001", "teacher")
	parentToken := register("PRT001", "p@school.test", "9876500002", "parent")

	rec := ts.request(t, http.MethodGet, "/v1/users/students?standard=6", teacherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var students []StudentOverview
	decode(t, rec, &students)
	require.Len(t, students, 2)
	assert.Equal(t, b.ID, students[0].ID)
	assert.Equal(t, a.ID, students[1].ID)

	// legacy parent accounts have no dashboard access
	rec = ts.request(t, http.MethodGet, "/v1/users/students", parentToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func Test_progress_fullJourney(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerStudent(t, "Nanda", "9876543210", "6")
	crs, qz := ts.createCourseWithQuiz(t, "6", 10, 100, 60)

	// explicit start creates once, then returns the existing record
	rec := ts.request(t, http.MethodPost, "/v1/progress/start", token, map[string]string{
		"course_id": crs.ID,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.request(t, http.MethodPost, "/v1/progress/start", token, map[string]string{
		"course_id": crs.ID,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// quiz locked before watching
	rec = ts.request(t, http.MethodGet, "/v1/courses/"+crs.ID+"/quiz", token, nil)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	// below the 90% gate
	rec = ts.request(t, http.MethodPut, "/v1/progress/video-complete", token, map[string]interface{}{
		"course_id": crs.ID, "watch_duration": 8,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var watch progress.WatchResult
	decode(t, rec, &watch)
	assert.False(t, watch.QuizUnlocked)

	// negative duration rejected
	rec = ts.request(t, http.MethodPut, "/v1/progress/video-complete", token, map[string]interface{}{
		"course_id": crs.ID, "watch_duration": -5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// exactly at the gate
	rec = ts.request(t, http.MethodPut, "/v1/progress/video-complete", token, map[string]interface{}{
		"course_id": crs.ID, "watch_duration": 9,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &watch)
	assert.True(t, watch.QuizUnlocked)

	// quiz served without answers
	rec = ts.request(t, http.MethodGet, "/v1/courses/"+crs.ID+"/quiz", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var served course.Quiz
	decode(t, rec, &served)
	for _, q := range served.Questions {
		assert.Empty(t, q.CorrectAnswer)
	}

	// submit: all correct
	rec = ts.request(t, http.MethodPost, "/v1/progress/submit-quiz", token, map[string]interface{}{
		"quiz_id": qz.ID,
		"answers": map[string]string{"Q1": "a", "Q2": "b", "Q3": "a"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res progress.SubmitResult
	decode(t, rec, &res)
	assert.True(t, res.Passed)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, 100, res.CreditsEarned)
	assert.Equal(t, 100, res.NewCredits)

	// stats reflect the pass
	rec = ts.request(t, http.MethodGet, "/v1/rewards/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats StatsResponse
	decode(t, rec, &stats)
	assert.Equal(t, 100, stats.TotalCredits)
	assert.Equal(t, 1, stats.CompletedCourses)
	assert.Equal(t, 1, stats.TotalCourses)
	assert.Equal(t, 100, stats.ProgressPercentage)

	// my-progress lists the record
	rec = ts.request(t, http.MethodGet, "/v1/progress/my-progress", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []progress.Progress
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].CompletedAt)
}

func Test_courses_listAndDetail(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerStudent(t, "Nanda", "9876543210", "6")
	crs, _ := ts.createCourseWithQuiz(t, "6", 10, 100, 60)
	ts.createCourseWithQuiz(t, "10", 10, 150, 60) // other standard, invisible

	rec := ts.request(t, http.MethodGet, "/v1/courses", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var courses []CourseWithProgress
	decode(t, rec, &courses)
	require.Len(t, courses, 1)
	assert.Nil(t, courses[0].Progress)

	// detail creates the progress record lazily
	rec = ts.request(t, http.MethodGet, "/v1/courses/"+crs.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail CourseWithProgress
	decode(t, rec, &detail)
	require.NotNil(t, detail.Progress)
	assert.False(t, detail.Progress.VideoCompleted)

	rec = ts.request(t, http.MethodGet, "/v1/courses/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// no token
	rec = ts.request(t, http.MethodGet, "/v1/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_courses_standardIsolation(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerStudent(t, "Nanda", "9876543210", "6")
	other, _ := ts.createCourseWithQuiz(t, "10", 10, 150, 60)

	rec := ts.request(t, http.MethodGet, "/v1/courses/"+other.ID, token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(t, http.MethodPut, "/v1/progress/video-complete", token, map[string]interface{}{
		"course_id": other.ID, "watch_duration": 9,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func Test_parent_otpFlow(t *testing.T) {
	ts := newTestServer(t)
	std, _ := ts.registerStudent(t, "Nanda", "9876543210", "6")
	ts.registerStudent(t, "Baraka", "9876511111", "10") // other family

	// unknown mobile
	rec := ts.request(t, http.MethodPost, "/v1/auth/parent/send-otp", "", map[string]string{
		"mobile": "9999999999",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// send
	rec = ts.request(t, http.MethodPost, "/v1/auth/parent/send-otp", "", map[string]string{
		"mobile": "9876543210",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var sent ParentOTPResponse
	decode(t, rec, &sent)
	assert.Len(t, sent.OTP, 6)
	assert.Equal(t, 1, sent.StudentsCount)
	require.Len(t, ts.smsSvc.SentMessages(), 1)
	assert.Contains(t, ts.smsSvc.SentMessages()[0].Body, sent.OTP)

	// two wrong attempts do not invalidate the code
	for i := 0; i < 2; i++ {
		rec = ts.request(t, http.MethodPost, "/v1/auth/parent/verify-otp", "", map[string]string{
			"mobile": "9876543210", "otp": "000000",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	// correct code succeeds
	rec = ts.request(t, http.MethodPost, "/v1/auth/parent/verify-otp", "", map[string]string{
		"mobile": "9876543210", "otp": sent.OTP,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var verified ParentTokenResponse
	decode(t, rec, &verified)
	require.Len(t, verified.Students, 1)
	assert.Equal(t, std.ID, verified.Students[0].ID)

	// codes are single-use
	rec = ts.request(t, http.MethodPost, "/v1/auth/parent/verify-otp", "", map[string]string{
		"mobile": "9876543210", "otp": sent.OTP,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// children summary
	rec = ts.request(t, http.MethodGet, "/v1/parent/children", verified.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var children []ChildSummary
	decode(t, rec, &children)
	require.Len(t, children, 1)
	assert.Equal(t, std.ID, children[0].ID)

	// child progress detail
	rec = ts.request(t, http.MethodGet, "/v1/parent/progress/"+std.ID, verified.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// non-linked student is off limits
	rec = ts.request(t, http.MethodGet, "/v1/parent/progress/"+uuid.NewString(), verified.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func Test_parent_otpExhaustion(t *testing.T) {
	ts := newTestServer(t)
	ts.registerStudent(t, "Nanda", "9876543210", "6")

	rec := ts.request(t, http.MethodPost, "/v1/auth/parent/send-otp", "", map[string]string{
		"mobile": "9876543210",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var sent ParentOTPResponse
	decode(t, rec, &sent)

	// three wrong attempts exhaust the code
	for i := 0; i < 3; i++ {
		rec = ts.request(t, http.MethodPost, "/v1/auth/parent/verify-otp", "", map[string]string{
			"mobile": "9876543210", "otp": "000000",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec = ts.request(t, http.MethodPost, "/v1/auth/parent/verify-otp", "", map[string]string{
		"mobile": "9876543210", "otp": sent.OTP,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// a fresh code works again
	rec = ts.request(t, http.MethodPost, "/v1/auth/parent/send-otp", "", map[string]string{
		"mobile": "9876543210",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &sent)
	rec = ts.request(t, http.MethodPost, "/v1/auth/parent/verify-otp", "", map[string]string{
		"mobile": "9876543210", "otp": sent.OTP,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_rewards_badges(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerStudent(t, "Nanda", "9876543210", "6")

	_, err := ts.badgeSvc.Create(context.Background(), badge.Badge{
		ID: uuid.NewString(), Name: "First Steps",
		Criteria: badge.Criteria{Kind: badge.KindCredits, Threshold: 50}, Rarity: "common",
	})
	require.NoError(t, err)

	rec := ts.request(t, http.MethodGet, "/v1/rewards/badges", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var catalog []badge.Badge
	decode(t, rec, &catalog)
	assert.Len(t, catalog, 1)

	rec = ts.request(t, http.MethodGet, "/v1/rewards/my-badges", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var earned []badge.EarnedBadge
	decode(t, rec, &earned)
	assert.Empty(t, earned)

	// pass a 50-credit course; the badge follows
	crs, qz := ts.createCourseWithQuiz(t, "6", 10, 50, 60)
	rec = ts.request(t, http.MethodPut, "/v1/progress/video-complete", token, map[string]interface{}{
		"course_id": crs.ID, "watch_duration": 10,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.request(t, http.MethodPost, "/v1/progress/submit-quiz", token, map[string]interface{}{
		"quiz_id": qz.ID,
		"answers": map[string]string{"Q1": "a", "Q2": "b", "Q3": "a"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var res progress.SubmitResult
	decode(t, rec, &res)
	require.Len(t, res.NewBadges, 1)

	rec = ts.request(t, http.MethodGet, "/v1/rewards/my-badges", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &earned)
	assert.Len(t, earned, 1)
}

func Test_leaderboard(t *testing.T) {
	ts := newTestServer(t)
	a, _ := ts.registerStudent(t, "Amani", "9876543210", "6")
	b, _ := ts.registerStudent(t, "Baraka", "9876543211", "10")

	ctx := context.Background()
	_, _, err := ts.studentSvc.AddCredits(ctx, a.ID, 100)
	require.NoError(t, err)
	_, _, err = ts.studentSvc.AddCredits(ctx, b.ID, 300)
	require.NoError(t, err)

	// public endpoint, no token
	rec := ts.request(t, http.MethodGet, "/v1/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []LeaderboardEntry
	decode(t, rec, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, b.ID, entries[0].StudentID)

	rec = ts.request(t, http.MethodGet, "/v1/leaderboard?standard=6", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, a.ID, entries[0].StudentID)
}

func Test_invalidToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/v1/progress/my-progress", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.request(t, http.MethodGet, "/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_homeAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "EduBridge")

	rec = ts.request(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
