package calculator

import (
	"math"
	"testing"

	"github.com/igokul95/splitzer/internal/models"
)

func TestPairFlow(t *testing.T) {
	tests := []struct {
		name   string
		splits []models.Split
		u1, u2 string
		want   float64
	}{
		{
			name: "two-party equal split paid by one",
			splits: []models.Split{
				{UserID: "a", PaidAmount: 50, OwedAmount: 25},
				{UserID: "b", PaidAmount: 0, OwedAmount: 25},
			},
			u1: "a", u2: "b",
			want: 25, // b owes a
		},
		{
			name: "sign flips with argument roles",
			splits: []models.Split{
				{UserID: "a", PaidAmount: 50, OwedAmount: 25},
				{UserID: "b", PaidAmount: 0, OwedAmount: 25},
			},
			u1: "b", u2: "a",
			want: -25,
		},
		{
			name: "three-way dinner paid by one, pair excludes payer",
			splits: []models.Split{
				{UserID: "a", PaidAmount: 90, OwedAmount: 30},
				{UserID: "b", PaidAmount: 0, OwedAmount: 30},
				{UserID: "c", PaidAmount: 0, OwedAmount: 30},
			},
			u1: "b", u2: "c",
			want: 0, // b and c never transacted with each other
		},
		{
			name: "three-way dinner, payer vs participant",
			splits: []models.Split{
				{UserID: "a", PaidAmount: 90, OwedAmount: 30},
				{UserID: "b", PaidAmount: 0, OwedAmount: 30},
				{UserID: "c", PaidAmount: 0, OwedAmount: 30},
			},
			u1: "a", u2: "b",
			want: 30,
		},
		{
			name: "multi-payer proportional attribution",
			// a net +40, b net +20, c net -60. c's debt splits 2:1 across
			// the lenders.
			splits: []models.Split{
				{UserID: "a", PaidAmount: 60, OwedAmount: 20},
				{UserID: "b", PaidAmount: 30, OwedAmount: 10},
				{UserID: "c", PaidAmount: 0, OwedAmount: 60},
			},
			u1: "a", u2: "c",
			want: 40,
		},
		{
			name: "multi-payer proportional attribution, smaller lender",
			splits: []models.Split{
				{UserID: "a", PaidAmount: 60, OwedAmount: 20},
				{UserID: "b", PaidAmount: 30, OwedAmount: 10},
				{UserID: "c", PaidAmount: 0, OwedAmount: 60},
			},
			u1: "b", u2: "c",
			want: 20,
		},
		{
			name: "fully balanced expense contributes nothing",
			splits: []models.Split{
				{UserID: "a", PaidAmount: 10, OwedAmount: 10},
				{UserID: "b", PaidAmount: 10, OwedAmount: 10},
			},
			u1: "a", u2: "b",
			want: 0,
		},
		{
			name: "neither user involved",
			splits: []models.Split{
				{UserID: "x", PaidAmount: 20, OwedAmount: 10},
				{UserID: "y", PaidAmount: 0, OwedAmount: 10},
			},
			u1: "a", u2: "b",
			want: 0,
		},
		{
			name: "settlement reverses an equal debt",
			// b pays a 25: a net -25 (owes), b net +25 (lent).
			splits: []models.Split{
				{UserID: "b", PaidAmount: 25, OwedAmount: 0},
				{UserID: "a", PaidAmount: 0, OwedAmount: 25},
			},
			u1: "a", u2: "b",
			want: -25,
		},
		{
			name: "borrower debt spread across lenders, only one endpoint relevant",
			// a +30, b +30, c -40, d -20. Flow a<-c = 40*30/60 = 20.
			splits: []models.Split{
				{UserID: "a", PaidAmount: 40, OwedAmount: 10},
				{UserID: "b", PaidAmount: 40, OwedAmount: 10},
				{UserID: "c", PaidAmount: 0, OwedAmount: 40},
				{UserID: "d", PaidAmount: 0, OwedAmount: 20},
			},
			u1: "a", u2: "c",
			want: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PairFlow(tt.splits, tt.u1, tt.u2)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PairFlow(%s, %s) = %v, want %v", tt.u1, tt.u2, got, tt.want)
			}
		})
	}
}
