package game

// Grade is ordered so that a larger value is a better judgement.
type Grade int

const (
	Undetermined Grade = iota
	Miss
	Bad
	Good
	Great
	Perfect
)

// Grades lists every determined grade, best first.
var Grades = []Grade{Perfect, Great, Good, Bad, Miss}

func (g Grade) String() string {
	switch g {
	case Miss:
		return "Miss"
	case Bad:
		return "Bad"
	case Good:
		return "Good"
	case Great:
		return "Great"
	case Perfect:
		return "Perfect"
	}
	return "Undetermined"
}

// BreaksCombo reports whether the grade resets the combo.
func (g Grade) BreaksCombo() bool {
	return g == Bad || g == Miss
}

func Worse(a, b Grade) Grade {
	if a < b {
		return a
	}
	return b
}
