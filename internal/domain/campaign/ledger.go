package campaign

type Underflow struct {
	Before int `json:"before"`
	Delta  int `json:"delta"`
	After  int `json:"after"`
}

type LedgerPreview struct {
	OK        bool                   `json:"ok"`
	Before    Ledger                 `json:"before"`
	After     Ledger                 `json:"after"`
	Underflow map[Category]Underflow `json:"underflow,omitempty"`
}

// PreviewLedger computes the post-state of applying delta without mutating current.
// After holds the raw sums, so rejected previews may show negative categories.
func PreviewLedger(current Ledger, delta LedgerDelta) LedgerPreview {
	out := LedgerPreview{OK: true, Before: current}
	for i := range current {
		after := current[i] + delta[i]
		out.After[i] = after
		if after < 0 {
			if out.Underflow == nil {
				out.Underflow = map[Category]Underflow{}
			}
			out.Underflow[Category(i)] = Underflow{Before: current[i], Delta: delta[i], After: after}
			out.OK = false
		}
	}
	return out
}

// ApplyClamped applies delta clamping every category at zero. It returns the
// new ledger and the categories whose delta was cut short.
func (l Ledger) ApplyClamped(delta LedgerDelta) (Ledger, map[Category]Underflow) {
	var clamped map[Category]Underflow
	out := l
	for i := range l {
		after := l[i] + delta[i]
		if after < 0 {
			if clamped == nil {
				clamped = map[Category]Underflow{}
			}
			clamped[Category(i)] = Underflow{Before: l[i], Delta: delta[i], After: after}
			after = 0
		}
		out[i] = after
	}
	return out, clamped
}

func (l Ledger) Valid() bool {
	for _, v := range l {
		if v < 0 {
			return false
		}
	}
	return true
}

// Cost turns a positive price into the negative delta that pays it.
func Cost(price LedgerDelta) LedgerDelta {
	var out LedgerDelta
	for i, v := range price {
		if v > 0 {
			out[i] = -v
		}
	}
	return out
}
