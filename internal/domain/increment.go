package domain

// MinimumNextBid returns the smallest acceptable amount for the next bid on a
// prize, given the committed leading amount. It is a pure function: callers may
// use it outside any lock for display, but the authoritative check recomputes
// it from a locked snapshot.
func MinimumNextBid(currentHighest, minimumBid int) int {
	if currentHighest == 0 {
		return minimumBid
	}

	return currentHighest + BidIncrement(currentHighest)
}

// BidIncrement is the step table mapping the current leading amount to the
// minimum raise.
func BidIncrement(currentHighest int) int {
	switch {
	case currentHighest < 10000:
		return 500
	case currentHighest < 30000:
		return 1000
	case currentHighest < 50000:
		return 2000
	default:
		return 5000
	}
}
