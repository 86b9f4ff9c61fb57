package course

import "time"

// Course is read-only input to the progression engine.
type Course struct {
	ID              string    `json:"course_id" db:"course_id"`
	Title           string    `json:"title" db:"title"`
	Standard        string    `json:"standard" db:"standard"`
	Subject         string    `json:"subject" db:"subject"`
	VideoURL        string    `json:"video_url" db:"video_url"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Credits         int       `json:"credits" db:"credits"`
	Description     string    `json:"description" db:"description"`
	Order           int       `json:"order" db:"ordering"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"` // UTC
}

// Question options and the correct answer are keyed by the question text on
// the wire; duplicate question text within one quiz collides. Kept for
// compatibility with existing clients.
type Question struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Marks         int      `json:"marks"` // defaults to 1 when unset
}

// Quiz carries one of two passing conventions, tagged per record:
// PassingMarks compares the raw mark sum, PassingScore compares the
// 0-100 normalized score. Exactly one is set.
type Quiz struct {
	ID           string     `json:"quiz_id" db:"quiz_id"`
	CourseID     string     `json:"course_id" db:"course_id"`
	Title        string     `json:"title" db:"title"`
	Questions    []Question `json:"questions"`
	PassingMarks *int       `json:"passing_marks,omitempty" db:"passing_marks"`
	PassingScore *int       `json:"passing_score,omitempty" db:"passing_score"`
	TotalMarks   int        `json:"total_marks" db:"total_marks"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"` // UTC
}

// MarksFor returns the marks a question is worth.
func (q Question) MarksFor() int {
	if q.Marks <= 0 {
		return 1
	}
	return q.Marks
}

// UsesPercentage reports whether the quiz is graded on the normalized
// 0-100 score rather than raw marks.
func (qz *Quiz) UsesPercentage() bool {
	return qz.PassingScore != nil
}

// Public strips correct answers for serving to students.
func (qz *Quiz) Public() *Quiz {
	pub := *qz
	pub.Questions = make([]Question, len(qz.Questions))
	for i, q := range qz.Questions {
		q.CorrectAnswer = ""
		pub.Questions[i] = q
	}
	return &pub
}
