package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"theatre-concessions/db"
	"theatre-concessions/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gopkg.in/yaml.v3"
)

// tierForDifficulty maps a coupon difficulty (1..10) to a puzzle pool tier.
func tierForDifficulty(difficulty int) string {
	switch {
	case difficulty <= 3:
		return models.PuzzleTierEasy
	case difficulty <= 6:
		return models.PuzzleTierMedium
	default:
		return models.PuzzleTierHard
	}
}

// puzzleClaim binds an issued puzzle to its expected answer: either a stored
// puzzle row (PuzzleID) or a static pool slot (Tier + Index). The encoded form
// is readable by anyone who base64-decodes it; it hides the answer from casual
// inspection, nothing more.
type puzzleClaim struct {
	PuzzleID int64  `json:"p,omitempty"`
	Tier     string `json:"t,omitempty"`
	Index    int    `json:"i,omitempty"`
	Nonce    string `json:"n"`
}

func encodePuzzleToken(c puzzleClaim) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decodePuzzleToken(token string) (*puzzleClaim, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrNotFound
	}
	var c puzzleClaim
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, ErrNotFound
	}
	return &c, nil
}

// staticPuzzles is the built-in fallback pool used when a tier has no active
// stored puzzles.
var staticPuzzles = map[string][]models.Puzzle{
	models.PuzzleTierEasy: {
		{Content: "What is 7 + 5?", Answer: "12"},
		{Content: "How many minutes are in one hour?", Answer: "60"},
		{Content: "Type the word 'popcorn' backwards.", Answer: "nrocpop"},
	},
	models.PuzzleTierMedium: {
		{Content: "What is 13 * 7?", Answer: "91"},
		{Content: "What is the next number: 1, 1, 2, 3, 5, 8, ?", Answer: "13"},
		{Content: "How many seconds are in a quarter hour?", Answer: "900"},
	},
	models.PuzzleTierHard: {
		{Content: "What is 2 to the power of 10?", Answer: "1024"},
		{Content: "What is the smallest prime above 100?", Answer: "101"},
		{Content: "How many permutations does a 4-letter word with distinct letters have?", Answer: "24"},
	},
}

// IssuePuzzle picks a puzzle for the coupon's difficulty tier and returns its
// content plus an opaque token the client must echo back with the answer.
// Stored puzzles are preferred; the static pool is the fallback.
func IssuePuzzle(ctx context.Context, couponCode string) (string, string, error) {
	c, err := activeCoupon(ctx, couponCode)
	if err != nil {
		return "", "", err
	}
	tier := tierForDifficulty(c.Difficulty)

	var p models.Puzzle
	err = db.Pool.QueryRow(ctx, `
		SELECT id, tier, content FROM puzzles
		WHERE tier = $1 AND active
		ORDER BY random() LIMIT 1`,
		tier,
	).Scan(&p.ID, &p.Tier, &p.Content)
	switch {
	case err == nil:
		token, err := encodePuzzleToken(puzzleClaim{PuzzleID: p.ID, Nonce: uuid.NewString()})
		if err != nil {
			return "", "", fmt.Errorf("encode puzzle token: %w", err)
		}
		return p.Content, token, nil
	case errors.Is(err, pgx.ErrNoRows):
		pool := staticPuzzles[tier]
		idx := rand.Intn(len(pool))
		token, err := encodePuzzleToken(puzzleClaim{Tier: tier, Index: idx, Nonce: uuid.NewString()})
		if err != nil {
			return "", "", fmt.Errorf("encode puzzle token: %w", err)
		}
		return pool[idx].Content, token, nil
	default:
		return "", "", fmt.Errorf("pick puzzle: %w", err)
	}
}

// verifyPuzzleAnswer decodes the token, looks up the expected answer and
// compares it with the supplied one (both trimmed, case-sensitive).
func verifyPuzzleAnswer(ctx context.Context, token, answer string) error {
	claim, err := decodePuzzleToken(token)
	if err != nil {
		return err
	}
	var expected string
	if claim.PuzzleID != 0 {
		err := db.Pool.QueryRow(ctx, `
			SELECT answer FROM puzzles WHERE id = $1 AND active`,
			claim.PuzzleID,
		).Scan(&expected)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("look up puzzle: %w", err)
		}
	} else {
		var ok bool
		expected, ok = staticAnswer(claim.Tier, claim.Index)
		if !ok {
			return ErrNotFound
		}
	}
	if strings.TrimSpace(answer) != strings.TrimSpace(expected) {
		return ErrPuzzleAnswerMismatch
	}
	return nil
}

func staticAnswer(tier string, index int) (string, bool) {
	pool, ok := staticPuzzles[tier]
	if !ok || index < 0 || index >= len(pool) {
		return "", false
	}
	return pool[index].Answer, true
}

type puzzleFile struct {
	Puzzles []models.Puzzle `yaml:"puzzles"`
}

func parsePuzzleFile(data []byte) ([]models.Puzzle, error) {
	var f puzzleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse puzzle file: %w", err)
	}
	for i, p := range f.Puzzles {
		switch p.Tier {
		case models.PuzzleTierEasy, models.PuzzleTierMedium, models.PuzzleTierHard:
		default:
			return nil, fmt.Errorf("puzzle %d: unknown tier %q", i+1, p.Tier)
		}
		if strings.TrimSpace(p.Answer) == "" {
			return nil, fmt.Errorf("puzzle %d: empty answer", i+1)
		}
	}
	return f.Puzzles, nil
}

// SeedPuzzles loads a YAML pool file and inserts its puzzles as active rows.
// Returns how many were inserted.
func SeedPuzzles(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read puzzle file: %w", err)
	}
	puzzles, err := parsePuzzleFile(data)
	if err != nil {
		return 0, err
	}
	for _, p := range puzzles {
		if _, err := db.Pool.Exec(ctx, `
			INSERT INTO puzzles (tier, content, answer, active)
			VALUES ($1, $2, TRIM($3), true)`,
			p.Tier, p.Content, p.Answer,
		); err != nil {
			return 0, fmt.Errorf("insert puzzle: %w", err)
		}
	}
	return len(puzzles), nil
}
