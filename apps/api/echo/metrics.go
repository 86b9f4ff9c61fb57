package echoapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Progression counters; served on /metrics.
var (
	quizSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edubridge_quiz_submissions_total",
		Help: "Quiz submissions graded, by outcome.",
	}, []string{"outcome"})

	creditsAwardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edubridge_credits_awarded_total",
		Help: "Credits awarded on first passes.",
	})

	badgeAwardsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edubridge_badge_awards_total",
		Help: "Badges awarded.",
	})

	otpIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edubridge_otp_issued_total",
		Help: "One-time passcodes issued to parents.",
	})
)

func recordSubmission(passed bool, creditsEarned, badgesAwarded int) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	quizSubmissionsTotal.WithLabelValues(outcome).Inc()
	creditsAwardedTotal.Add(float64(creditsEarned))
	badgeAwardsTotal.Add(float64(badgesAwarded))
}
