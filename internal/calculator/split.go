// Package calculator provides the pure arithmetic at the heart of Splitzer:
// canonical pair ordering, split computation for each split method, and the
// proportional lender/borrower flow used by the balance engine. Nothing here
// touches storage or validates caller intent; error conditions yield empty
// results and are rejected at the service boundary.
package calculator

import "math"

// SplitInput is one computed (user, paid, owed) triple, ready to persist as
// an expense split.
type SplitInput struct {
	UserID     string
	PaidAmount float64
	OwedAmount float64
}

// Payer assigns a specific paid amount to a user in a multi-payer expense.
type Payer struct {
	UserID string
	Amount float64
}

// Participant marks a user as included in (or excluded from) a split.
type Participant struct {
	UserID   string
	Included bool
}

// ExactAmount is a caller-specified owed amount for an exact split.
type ExactAmount struct {
	UserID string
	Amount float64
}

// Percentage is a caller-specified percentage of the total for one user.
type Percentage struct {
	UserID     string
	Percentage float64
}

// Shares is a caller-specified share count for one user.
type Shares struct {
	UserID string
	Shares float64
}

// Round2 rounds to 2 decimal places, half away from zero on the cent
// boundary.
func Round2(n float64) float64 {
	return math.Round(n*100) / 100
}

// distributeRemainder rounds each amount to cents, then walks any leftover
// difference against the total one cent at a time onto the first amounts in
// order, stopping once the discrepancy falls under half a cent. The returned
// amounts sum exactly to Round2(total).
func distributeRemainder(amounts []float64, total float64) []float64 {
	result := make([]float64, len(amounts))
	sum := 0.0
	for i, a := range amounts {
		result[i] = Round2(a)
		sum += result[i]
	}

	diff := Round2(total - sum)
	for i := 0; math.Abs(diff) >= 0.005 && i < len(result); i++ {
		if diff > 0 {
			result[i] = Round2(result[i] + 0.01)
			diff = Round2(diff - 0.01)
		} else {
			result[i] = Round2(result[i] - 0.01)
			diff = Round2(diff + 0.01)
		}
	}

	return result
}

// buildPayerMap maps userID to paid amount. With no multi-payer list the
// single payer covers the full total.
func buildPayerMap(totalAmount float64, payerID string, multiPayers []Payer) map[string]float64 {
	payerMap := make(map[string]float64)
	if len(multiPayers) > 0 {
		for _, p := range multiPayers {
			payerMap[p.UserID] = Round2(p.Amount)
		}
		return payerMap
	}
	payerMap[payerID] = Round2(totalAmount)
	return payerMap
}

// combineSplits unions the users who owe with the users who paid, producing
// one split row per user. A payer who owes nothing gets OwedAmount 0; an ower
// who paid nothing gets PaidAmount 0. Owed amounts are matched to included
// participants in order; iteration order follows the participants slice with
// payer-only users appended.
func combineSplits(participants []Participant, owedAmounts []float64, payerMap map[string]float64) []SplitInput {
	var included []Participant
	for _, p := range participants {
		if p.Included {
			included = append(included, p)
		}
	}

	seen := make(map[string]bool, len(included)+len(payerMap))
	var order []string
	for _, p := range included {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			order = append(order, p.UserID)
		}
	}
	for uid := range payerMap {
		if !seen[uid] {
			seen[uid] = true
			order = append(order, uid)
		}
	}

	owedByUser := make(map[string]float64, len(included))
	for i, p := range included {
		if i < len(owedAmounts) {
			owedByUser[p.UserID] = owedAmounts[i]
		}
	}

	splits := make([]SplitInput, 0, len(order))
	for _, uid := range order {
		splits = append(splits, SplitInput{
			UserID:     uid,
			PaidAmount: Round2(payerMap[uid]),
			OwedAmount: Round2(owedByUser[uid]),
		})
	}

	return splits
}

// EqualSplit divides the total evenly among included participants,
// redistributing rounding remainders cent by cent to the first participants.
// Returns nil when nobody is included.
func EqualSplit(totalAmount float64, participants []Participant, payerID string, multiPayers []Payer) []SplitInput {
	var included []Participant
	for _, p := range participants {
		if p.Included {
			included = append(included, p)
		}
	}
	if len(included) == 0 {
		return nil
	}

	perPerson := totalAmount / float64(len(included))
	raw := make([]float64, len(included))
	for i := range raw {
		raw[i] = perPerson
	}
	owedAmounts := distributeRemainder(raw, totalAmount)

	payerMap := buildPayerMap(totalAmount, payerID, multiPayers)
	return combineSplits(participants, owedAmounts, payerMap)
}

// ExactSplit takes caller-specified owed amounts as-is. The caller is
// responsible for checking the amounts against the total; the mutation layer
// enforces the tolerance.
func ExactSplit(totalAmount float64, exactAmounts []ExactAmount, payerID string, multiPayers []Payer) []SplitInput {
	participants := make([]Participant, len(exactAmounts))
	owedAmounts := make([]float64, len(exactAmounts))
	for i, e := range exactAmounts {
		participants[i] = Participant{UserID: e.UserID, Included: true}
		owedAmounts[i] = Round2(e.Amount)
	}
	payerMap := buildPayerMap(totalAmount, payerID, multiPayers)
	return combineSplits(participants, owedAmounts, payerMap)
}

// PercentageSplit computes each owed amount as percentage x total / 100, then
// redistributes the rounding remainder against the total.
func PercentageSplit(totalAmount float64, percentages []Percentage, payerID string, multiPayers []Payer) []SplitInput {
	participants := make([]Participant, len(percentages))
	raw := make([]float64, len(percentages))
	for i, p := range percentages {
		participants[i] = Participant{UserID: p.UserID, Included: true}
		raw[i] = totalAmount * p.Percentage / 100
	}
	owedAmounts := distributeRemainder(raw, totalAmount)
	payerMap := buildPayerMap(totalAmount, payerID, multiPayers)
	return combineSplits(participants, owedAmounts, payerMap)
}

// SharesSplit computes each owed amount as shareCount x total / totalShares,
// then redistributes the rounding remainder. Returns nil when the share
// counts sum to zero.
func SharesSplit(totalAmount float64, shares []Shares, payerID string, multiPayers []Payer) []SplitInput {
	totalShares := 0.0
	for _, s := range shares {
		totalShares += s.Shares
	}
	if totalShares == 0 {
		return nil
	}

	participants := make([]Participant, len(shares))
	raw := make([]float64, len(shares))
	for i, s := range shares {
		participants[i] = Participant{UserID: s.UserID, Included: true}
		raw[i] = totalAmount * s.Shares / totalShares
	}
	owedAmounts := distributeRemainder(raw, totalAmount)
	payerMap := buildPayerMap(totalAmount, payerID, multiPayers)
	return combineSplits(participants, owedAmounts, payerMap)
}
