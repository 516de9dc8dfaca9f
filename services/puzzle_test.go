package services

import (
	"testing"

	"theatre-concessions/models"
)

func TestTierForDifficulty(t *testing.T) {
	tests := []struct {
		difficulty int
		want       string
	}{
		{1, models.PuzzleTierEasy},
		{3, models.PuzzleTierEasy},
		{4, models.PuzzleTierMedium},
		{6, models.PuzzleTierMedium},
		{7, models.PuzzleTierHard},
		{10, models.PuzzleTierHard},
	}
	for _, tt := range tests {
		if got := tierForDifficulty(tt.difficulty); got != tt.want {
			t.Errorf("tierForDifficulty(%d) = %q, want %q", tt.difficulty, got, tt.want)
		}
	}
}

func TestPuzzleTokenRoundTrip(t *testing.T) {
	in := puzzleClaim{PuzzleID: 42, Nonce: "abc"}
	token, err := encodePuzzleToken(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodePuzzleToken(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.PuzzleID != 42 || out.Nonce != "abc" {
		t.Errorf("round trip lost fields: %+v", out)
	}
}

func TestDecodePuzzleTokenGarbage(t *testing.T) {
	for _, token := range []string{"", "!!!not-base64!!!", "bm90LWpzb24"} {
		if _, err := decodePuzzleToken(token); err == nil {
			t.Errorf("decodePuzzleToken(%q) accepted garbage", token)
		}
	}
}

func TestStaticAnswer(t *testing.T) {
	for tier, pool := range staticPuzzles {
		for i := range pool {
			answer, ok := staticAnswer(tier, i)
			if !ok || answer == "" {
				t.Errorf("staticAnswer(%q, %d) = (%q, %v)", tier, i, answer, ok)
			}
		}
	}
	if _, ok := staticAnswer(models.PuzzleTierEasy, 99); ok {
		t.Error("out-of-range index accepted")
	}
	if _, ok := staticAnswer("nonsense", 0); ok {
		t.Error("unknown tier accepted")
	}
}

func TestParsePuzzleFile(t *testing.T) {
	data := []byte(`
puzzles:
  - tier: easy
    content: "What is 1 + 1?"
    answer: "2"
  - tier: hard
    content: "What is 2^10?"
    answer: "1024"
`)
	puzzles, err := parsePuzzleFile(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(puzzles) != 2 {
		t.Fatalf("got %d puzzles, want 2", len(puzzles))
	}
	if puzzles[0].Tier != models.PuzzleTierEasy || puzzles[0].Answer != "2" {
		t.Errorf("first puzzle parsed wrong: %+v", puzzles[0])
	}
}

func TestParsePuzzleFileRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown tier", "puzzles:\n  - tier: impossible\n    content: x\n    answer: y\n"},
		{"empty answer", "puzzles:\n  - tier: easy\n    content: x\n    answer: \"  \"\n"},
		{"not yaml", ": : :"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parsePuzzleFile([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
