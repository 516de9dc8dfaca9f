package services

import "testing"

func TestApplyRating(t *testing.T) {
	tests := []struct {
		name       string
		rating     int64
		total      int64
		score      int64
		wantRating int64
		wantTotal  int64
	}{
		// first rating is taken verbatim, no division artifacts
		{"first rating", 0, 0, 450, 450, 1},
		{"first rating zero score", 0, 0, 0, 0, 1},
		// (4.00*10 + 5.00)/11 = 45/11 = 4.0909... -> 4.09
		{"running average rounds down", 400, 10, 500, 409, 11},
		// (3.00*1 + 4.00)/2 = 3.50
		{"second rating exact half", 300, 1, 400, 350, 2},
		// (4.99*2 + 5.00)/3 = 14.98/3 = 4.9933 -> 4.99
		{"stays below cap", 499, 2, 500, 499, 3},
		{"cap holds at five", 500, 100, 500, 500, 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotRating, gotTotal := applyRating(tt.rating, tt.total, tt.score)
			if gotRating != tt.wantRating || gotTotal != tt.wantTotal {
				t.Errorf("applyRating(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.rating, tt.total, tt.score, gotRating, gotTotal, tt.wantRating, tt.wantTotal)
			}
		})
	}
}

func TestApplyRatingStaysInBounds(t *testing.T) {
	rating, total := int64(0), int64(0)
	for _, score := range []int64{500, 500, 0, 500, 250, 500, 500} {
		rating, total = applyRating(rating, total, score)
		if rating < 0 || rating > maxRating {
			t.Fatalf("rating %d out of [0, %d] after %d deliveries", rating, maxRating, total)
		}
	}
}

// Integration test outline (requires test DB):
func TestAssignDriverIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	// Requires:
	// - Two available drivers, ratings 4.50 and 3.00
	// - AssignDriver picks the 4.50 driver (rating DESC, user_id ASC)
	// - After assignment that driver's duty_status is on_delivery
	// - With equal ratings, the lower user_id wins
	// - With no available driver, AssignDriver returns (false, nil)
	// bestAvailableDriverTx locks the chosen row with FOR UPDATE SKIP LOCKED,
	// so two concurrent assignments cannot bind the same driver.
}
