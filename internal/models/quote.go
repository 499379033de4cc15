package models

import "sort"

// Known loyalty programs
const (
	ProgramSmiles    = "Smiles"
	ProgramLatamPass = "LatamPass"
	ProgramTudoAzul  = "TudoAzul"
)

// Programs lists the supported loyalty programs in display order.
var Programs = []string{ProgramSmiles, ProgramLatamPass, ProgramTudoAzul}

// BonusPresets are the transfer bonus percentages offered by the simulator.
var BonusPresets = []int{100, 90, 80, 70, 60, 0}

// Quote is a market reference price for one program, in currency per
// thousand points.
type Quote struct {
	Program string  `json:"program"`
	Price   float64 `json:"price"`
}

// Quotes maps program name to market price. Programs without a price are
// absent, never zero.
type Quotes map[string]float64

// Price returns the quote for a program.
func (q Quotes) Price(program string) (float64, bool) {
	p, ok := q[program]
	return p, ok
}

// Clone returns an independent copy.
func (q Quotes) Clone() Quotes {
	out := make(Quotes, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}

// List returns the quotes sorted by program name.
func (q Quotes) List() []Quote {
	out := make([]Quote, 0, len(q))
	for program, price := range q {
		out = append(out, Quote{Program: program, Price: price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Program < out[j].Program })
	return out
}

// QuoteSnapshot is the quote table as served to callers.
type QuoteSnapshot struct {
	Quotes Quotes  `json:"quotes"`
	Items  []Quote `json:"items"`
}
