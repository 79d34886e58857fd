package calculator

import "github.com/igokul95/splitzer/internal/models"

// PairFlow computes the net flow between u1 and u2 for one expense's full
// split set. The result is how much u2 owes u1 on this expense: positive for
// u2 -> u1, negative for u1 -> u2, zero when neither is involved or the
// expense is internally balanced.
//
// Each participant's net is paid - owed. Participants with positive net are
// lenders, negative net borrowers. Every borrower's debt is distributed
// across lenders in proportion to each lender's net:
//
//	flow(lender, borrower) = |borrower.net| * lender.net / totalLent
//
// Only the flows whose endpoints are exactly {u1, u2} contribute. Modeling
// the expense as a bipartite allocation keeps pairwise balances correct for
// multi-participant and multi-payer expenses, where arbitrary pairing would
// misattribute debt. An expense with totalLent == 0 contributes nothing.
func PairFlow(splits []models.Split, u1, u2 string) float64 {
	involved := false
	var lenders, borrowers []models.Split
	totalLent := 0.0

	for _, s := range splits {
		if s.UserID == u1 || s.UserID == u2 {
			involved = true
		}
		net := s.Net()
		switch {
		case net > 0:
			lenders = append(lenders, s)
			totalLent += net
		case net < 0:
			borrowers = append(borrowers, s)
		}
	}

	if !involved || totalLent == 0 {
		return 0
	}

	flow := 0.0
	for _, lender := range lenders {
		for _, borrower := range borrowers {
			pairMatch := (lender.UserID == u1 && borrower.UserID == u2) ||
				(lender.UserID == u2 && borrower.UserID == u1)
			if !pairMatch {
				continue
			}

			f := -borrower.Net() * lender.Net() / totalLent
			if lender.UserID == u1 {
				flow += f
			} else {
				flow -= f
			}
		}
	}

	return flow
}
