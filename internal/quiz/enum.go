package quiz

type Mode string

const (
	ModeRandom30 Mode = "RANDOM_30"
	ModeBlock    Mode = "BLOCK"
)

// RandomDrawSize is the number of questions drawn for a RANDOM_30 attempt.
const RandomDrawSize = 30

func (m Mode) IsValid() bool {
	return m == ModeRandom30 || m == ModeBlock
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

var AllDifficulties = []Difficulty{
	DifficultyEasy,
	DifficultyMedium,
	DifficultyHard,
}

func (d Difficulty) IsValid() bool {
	for _, v := range AllDifficulties {
		if d == v {
			return true
		}
	}
	return false
}
