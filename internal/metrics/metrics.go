package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QuizzesComposed counts composed quizzes by mode ("bank" or "section").
	QuizzesComposed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizbank_quizzes_composed_total",
		Help: "Number of composed quizzes.",
	}, []string{"mode"})

	// QuestionsServed observes the size of composed quizzes.
	QuestionsServed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quizbank_quiz_questions",
		Help:    "Number of questions in a composed quiz.",
		Buckets: []float64{0, 5, 10, 20, 30, 50, 100},
	})

	DecodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizbank_question_decode_failures_total",
		Help: "Question blocks dropped because they could not be decoded.",
	})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizbank_submissions_total",
		Help: "Scored quiz submissions by outcome.",
	}, []string{"outcome"})

	ScorePercentage = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quizbank_score_percentage",
		Help:    "Distribution of quiz scores in percent.",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizbank_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	BankFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizbank_bank_fetch_errors_total",
		Help: "Failed question-bank fetches by source.",
	}, []string{"source"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quizbank_active_sessions",
		Help: "Quiz attempts held in the session store.",
	})
)
