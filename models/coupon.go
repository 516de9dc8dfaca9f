package models

// Coupon gates a percentage discount behind a code puzzle whose tier is
// derived from Difficulty (1..10).
type Coupon struct {
	Code            string
	Difficulty      int   // 1..10
	DiscountPercent int64 // 0..100
	Active          bool
}

const (
	PuzzleTierEasy   = "easy"   // difficulty 1-3
	PuzzleTierMedium = "medium" // difficulty 4-6
	PuzzleTierHard   = "hard"   // difficulty 7-10
)

// Puzzle is one challenge from a tier pool. Answer comparison is trimmed and
// case-sensitive.
type Puzzle struct {
	ID      int64  `yaml:"-"`
	Tier    string `yaml:"tier"`
	Content string `yaml:"content"`
	Answer  string `yaml:"answer"`
	Active  bool   `yaml:"-"`
}
