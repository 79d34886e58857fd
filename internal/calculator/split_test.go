package calculator

import (
	"math"
	"testing"
)

func sumPaid(splits []SplitInput) float64 {
	s := 0.0
	for _, sp := range splits {
		s += sp.PaidAmount
	}
	return Round2(s)
}

func sumOwed(splits []SplitInput) float64 {
	s := 0.0
	for _, sp := range splits {
		s += sp.OwedAmount
	}
	return Round2(s)
}

func findSplit(t *testing.T, splits []SplitInput, userID string) SplitInput {
	t.Helper()
	for _, s := range splits {
		if s.UserID == userID {
			return s
		}
	}
	t.Fatalf("no split for user %s", userID)
	return SplitInput{}
}

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name         string
		total        float64
		participants []Participant
		payerID      string
		multiPayers  []Payer
		wantLen      int
		validateFunc func(t *testing.T, splits []SplitInput)
	}{
		{
			name:  "two-way even amount",
			total: 50.00,
			participants: []Participant{
				{UserID: "alice", Included: true},
				{UserID: "bob", Included: true},
			},
			payerID: "alice",
			wantLen: 2,
			validateFunc: func(t *testing.T, splits []SplitInput) {
				alice := findSplit(t, splits, "alice")
				if alice.PaidAmount != 50.00 || alice.OwedAmount != 25.00 {
					t.Errorf("alice = %+v, want paid 50.00 owed 25.00", alice)
				}
				bob := findSplit(t, splits, "bob")
				if bob.PaidAmount != 0 || bob.OwedAmount != 25.00 {
					t.Errorf("bob = %+v, want paid 0 owed 25.00", bob)
				}
			},
		},
		{
			name:  "remainder distribution: 10.00 over 3",
			total: 10.00,
			participants: []Participant{
				{UserID: "a", Included: true},
				{UserID: "b", Included: true},
				{UserID: "c", Included: true},
			},
			payerID: "a",
			wantLen: 3,
			validateFunc: func(t *testing.T, splits []SplitInput) {
				if got := sumOwed(splits); got != 10.00 {
					t.Errorf("owed sum = %v, want exactly 10.00", got)
				}
				// One participant absorbs the extra cent.
				extra := 0
				for _, s := range splits {
					switch s.OwedAmount {
					case 3.34:
						extra++
					case 3.33:
					default:
						t.Errorf("unexpected owed amount %v", s.OwedAmount)
					}
				}
				if extra != 1 {
					t.Errorf("got %d participants with 3.34, want 1", extra)
				}
			},
		},
		{
			name:  "excluded participant gets no row",
			total: 30.00,
			participants: []Participant{
				{UserID: "a", Included: true},
				{UserID: "b", Included: false},
				{UserID: "c", Included: true},
			},
			payerID: "a",
			wantLen: 2,
		},
		{
			name:  "payer outside the owing set still gets a row",
			total: 20.00,
			participants: []Participant{
				{UserID: "b", Included: true},
				{UserID: "c", Included: true},
			},
			payerID: "a",
			wantLen: 3,
			validateFunc: func(t *testing.T, splits []SplitInput) {
				a := findSplit(t, splits, "a")
				if a.PaidAmount != 20.00 || a.OwedAmount != 0 {
					t.Errorf("payer split = %+v, want paid 20.00 owed 0", a)
				}
			},
		},
		{
			name:  "multi-payer amounts carried to splits",
			total: 60.00,
			participants: []Participant{
				{UserID: "a", Included: true},
				{UserID: "b", Included: true},
				{UserID: "c", Included: true},
			},
			payerID: "a",
			multiPayers: []Payer{
				{UserID: "a", Amount: 40.00},
				{UserID: "b", Amount: 20.00},
			},
			wantLen: 3,
			validateFunc: func(t *testing.T, splits []SplitInput) {
				if got := sumPaid(splits); got != 60.00 {
					t.Errorf("paid sum = %v, want 60.00", got)
				}
				if b := findSplit(t, splits, "b"); b.PaidAmount != 20.00 {
					t.Errorf("b paid = %v, want 20.00", b.PaidAmount)
				}
				if c := findSplit(t, splits, "c"); c.PaidAmount != 0 {
					t.Errorf("c paid = %v, want 0", c.PaidAmount)
				}
			},
		},
		{
			name:         "no included participants",
			total:        10.00,
			participants: []Participant{{UserID: "a", Included: false}},
			payerID:      "a",
			wantLen:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits := EqualSplit(tt.total, tt.participants, tt.payerID, tt.multiPayers)
			if len(splits) != tt.wantLen {
				t.Fatalf("got %d splits, want %d: %+v", len(splits), tt.wantLen, splits)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, splits)
			}
		})
	}
}

func TestExactSplit(t *testing.T) {
	splits := ExactSplit(100.00,
		[]ExactAmount{{UserID: "a", Amount: 70.00}, {UserID: "b", Amount: 30.00}},
		"b", nil)

	if len(splits) != 2 {
		t.Fatalf("got %d splits, want 2", len(splits))
	}
	a := findSplit(t, splits, "a")
	if a.OwedAmount != 70.00 || a.PaidAmount != 0 {
		t.Errorf("a = %+v, want owed 70.00 paid 0", a)
	}
	b := findSplit(t, splits, "b")
	if b.OwedAmount != 30.00 || b.PaidAmount != 100.00 {
		t.Errorf("b = %+v, want owed 30.00 paid 100.00", b)
	}
}

func TestPercentageSplit(t *testing.T) {
	splits := PercentageSplit(90.00,
		[]Percentage{
			{UserID: "a", Percentage: 50},
			{UserID: "b", Percentage: 25},
			{UserID: "c", Percentage: 25},
		},
		"a", nil)

	if got := sumOwed(splits); got != 90.00 {
		t.Errorf("owed sum = %v, want 90.00", got)
	}
	if a := findSplit(t, splits, "a"); a.OwedAmount != 45.00 {
		t.Errorf("a owed = %v, want 45.00", a.OwedAmount)
	}

	// Thirds leave a remainder that must land on exactly one participant.
	thirds := PercentageSplit(100.00,
		[]Percentage{
			{UserID: "a", Percentage: 100.0 / 3},
			{UserID: "b", Percentage: 100.0 / 3},
			{UserID: "c", Percentage: 100.0 / 3},
		},
		"a", nil)
	if got := sumOwed(thirds); got != 100.00 {
		t.Errorf("thirds owed sum = %v, want exactly 100.00", got)
	}
}

func TestSharesSplit(t *testing.T) {
	t.Run("proportional to share counts", func(t *testing.T) {
		splits := SharesSplit(100.00,
			[]Shares{{UserID: "a", Shares: 3}, {UserID: "b", Shares: 1}},
			"a", nil)

		if a := findSplit(t, splits, "a"); a.OwedAmount != 75.00 {
			t.Errorf("a owed = %v, want 75.00", a.OwedAmount)
		}
		if b := findSplit(t, splits, "b"); b.OwedAmount != 25.00 {
			t.Errorf("b owed = %v, want 25.00", b.OwedAmount)
		}
	})

	t.Run("zero total shares yields empty result", func(t *testing.T) {
		splits := SharesSplit(100.00,
			[]Shares{{UserID: "a", Shares: 0}, {UserID: "b", Shares: 0}},
			"a", nil)
		if len(splits) != 0 {
			t.Errorf("got %d splits, want 0", len(splits))
		}
	})

	t.Run("uneven shares sum exactly", func(t *testing.T) {
		splits := SharesSplit(10.00,
			[]Shares{{UserID: "a", Shares: 1}, {UserID: "b", Shares: 1}, {UserID: "c", Shares: 1}},
			"a", nil)
		if got := sumOwed(splits); got != 10.00 {
			t.Errorf("owed sum = %v, want exactly 10.00", got)
		}
	})
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.234, 1.23},
		{1.236, 1.24},
		{-1.236, -1.24},
		{10.0 / 3, 3.33},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
