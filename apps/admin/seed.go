package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edubridge/backend/core/badge"
	"github.com/edubridge/backend/core/course"
)

// seed loads the badge catalog plus a small grade-isolated demo catalog of
// courses and quizzes. Safe to run on an empty database only; it does not
// upsert.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	if err := cli.seedBadges(ctx); err != nil {
		return err
	}
	return cli.seedCourses(ctx)
}

func (cli *commandLine) seedBadges(ctx context.Context) error {
	badges := []badge.Badge{
		{
			Name:        "First Steps",
			Description: "Complete your first course",
			Icon:        "🎯",
			Criteria:    badge.Criteria{Kind: badge.KindCredits, Threshold: 50},
			Rarity:      "common",
		},
		{
			Name:        "Knowledge Seeker",
			Description: "Earn 500 credits",
			Icon:        "📚",
			Criteria:    badge.Criteria{Kind: badge.KindCredits, Threshold: 500},
			Rarity:      "rare",
		},
		{
			Name:        "Rising Star",
			Description: "Reach Level 3",
			Icon:        "⭐",
			Criteria:    badge.Criteria{Kind: badge.KindLevel, Threshold: 3},
			Rarity:      "rare",
		},
		{
			Name:        "Master Learner",
			Description: "Earn 1000 credits",
			Icon:        "🏅",
			Criteria:    badge.Criteria{Kind: badge.KindCredits, Threshold: 1000},
			Rarity:      "epic",
		},
		{
			Name:        "Legend",
			Description: "Reach Level 5",
			Icon:        "👑",
			Criteria:    badge.Criteria{Kind: badge.KindLevel, Threshold: 5},
			Rarity:      "legendary",
		},
	}

	for _, b := range badges {
		b.ID = uuid.NewString()
		if _, err := cli.badgeSvc.Create(ctx, b); err != nil {
			return err
		}
	}
	logger.Printf("created %d badges", len(badges))
	return nil
}

type seedCourse struct {
	standard string
	subject  string
	title    string
	videoURL string
	duration int
	credits  int
}

func (cli *commandLine) seedCourses(ctx context.Context) error {
	data := []seedCourse{
		{"KG", "Rhymes", "ABC Song", "https://www.youtube.com/watch?v=BELlZKpi1Zs", 3, 50},
		{"KG", "Colors", "Learn Colors", "https://www.youtube.com/watch?v=skvA00Ush88", 5, 50},
		{"6", "Science", "Photosynthesis", "https://www.youtube.com/watch?v=UPBMG5EYydo", 12, 100},
		{"6", "Mathematics", "Fractions Basics", "https://www.youtube.com/watch?v=uDfiyH-40bE", 15, 100},
		{"10", "Science", "Chemical Reactions", "https://www.youtube.com/watch?v=8IlzKri08kk", 15, 150},
		{"10", "Mathematics", "Quadratic Equations", "https://www.youtube.com/watch?v=9vKqVkMQHKk", 18, 150},
		{"12", "Physics", "Newton's Laws", "https://www.youtube.com/watch?v=kKKM8Y-u7ds", 20, 200},
		{"12", "Chemistry", "Organic Chemistry", "https://www.youtube.com/watch?v=cRCxdBV8YKQ", 22, 200},
		{"BTECH", "DSA", "Data Structures Intro", "https://www.youtube.com/watch?v=Hj_rA0dhr2I", 25, 250},
		{"BTECH", "Web Dev", "HTML CSS Basics", "https://www.youtube.com/watch?v=UB1O30fR-EE", 30, 250},
	}

	now := time.Now().UTC()
	passingScore := 60

	for i, sc := range data {
		crs := course.Course{
			ID:              uuid.NewString(),
			Title:           sc.title,
			Standard:        sc.standard,
			Subject:         sc.subject,
			VideoURL:        sc.videoURL,
			DurationMinutes: sc.duration,
			Credits:         sc.credits,
			Description:     fmt.Sprintf("Learn %s for Class %s", sc.title, sc.standard),
			Order:           i,
			CreatedAt:       now,
		}
		if _, err := cli.courseSvc.Create(ctx, crs); err != nil {
			return err
		}

		score := passingScore
		qz := course.Quiz{
			ID:       uuid.NewString(),
			CourseID: crs.ID,
			Title:    sc.title + " Quiz",
			Questions: []course.Question{
				{
					Text:          "What is the main topic of this lesson?",
					Options:       []string{sc.title, "Something else", "Not sure", "Other topic"},
					CorrectAnswer: sc.title,
				},
				{
					Text:          "Which subject does this belong to?",
					Options:       []string{sc.subject, "History", "Geography", "Art"},
					CorrectAnswer: sc.subject,
				},
				{
					Text:          "What class is this for?",
					Options:       []string{"Class " + sc.standard, "All classes", "No class", "Unknown"},
					CorrectAnswer: "Class " + sc.standard,
				},
			},
			PassingScore: &score,
			CreatedAt:    now,
		}
		if _, err := cli.courseSvc.CreateQuiz(ctx, qz); err != nil {
			return err
		}
	}
	logger.Printf("created %d courses with quizzes", len(data))
	return nil
}
