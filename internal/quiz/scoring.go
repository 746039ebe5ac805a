package quiz

import "fmt"

// Points awarded per tier.
const (
	PointsExact      = 10
	PointsDifference = 7
	PointsResult     = 5
	PointsOneScore   = 3
	PointsNone       = 0
)

// Tier classes a grade for display.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierOkay      Tier = "okay"
	TierPoor      Tier = "poor"
)

// Grade is the outcome of one guess.
type Grade struct {
	Points  int    `json:"points"`
	Message string `json:"message"`
	Tier    Tier   `json:"tier"`
}

// Score awards points for a guess against the final score:
// exact 10, same goal difference 7, same outcome 5, one side right 3, else 0.
func Score(guessHome, guessAway, actualHome, actualAway int) int {
	if guessHome == actualHome && guessAway == actualAway {
		return PointsExact
	}

	guessDiff := guessHome - guessAway
	actualDiff := actualHome - actualAway

	// equal differences always share an outcome
	if guessDiff == actualDiff {
		return PointsDifference
	}
	if outcome(guessDiff) == outcome(actualDiff) {
		return PointsResult
	}
	if guessHome == actualHome || guessAway == actualAway {
		return PointsOneScore
	}
	return PointsNone
}

func outcome(diff int) int {
	switch {
	case diff > 0:
		return 1
	case diff < 0:
		return -1
	default:
		return 0
	}
}

// GradeGuess scores a guess and attaches the verdict shown to the player.
func GradeGuess(guessHome, guessAway, actualHome, actualAway int) Grade {
	points := Score(guessHome, guessAway, actualHome, actualAway)

	var g Grade
	switch points {
	case PointsExact:
		g = Grade{Message: "Perfect! Exact score!", Tier: TierExcellent}
	case PointsDifference:
		g = Grade{Message: "Great! Correct goal difference!", Tier: TierExcellent}
	case PointsResult:
		g = Grade{Message: "Good! Correct result!", Tier: TierGood}
	case PointsOneScore:
		g = Grade{Message: "Not bad! One score correct!", Tier: TierOkay}
	default:
		g = Grade{Message: "Wrong guess!", Tier: TierPoor}
	}
	g.Points = points
	g.Message = fmt.Sprintf("%s +%d points", g.Message, points)
	return g
}

// Performance is the end-of-game message for score out of maxScore.
func Performance(score, maxScore int) string {
	if maxScore <= 0 {
		return "Room for improvement! Try again!"
	}
	percentage := float64(score) / float64(maxScore) * 100

	switch {
	case percentage >= 80:
		return "Outstanding! You're a football expert!"
	case percentage >= 60:
		return "Great job! You know your football!"
	case percentage >= 40:
		return "Good effort! Keep practicing!"
	default:
		return "Room for improvement! Try again!"
	}
}
