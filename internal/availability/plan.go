package availability

import "sort"

// Plan is a working copy of an accommodation's counters. Operations are
// applied in memory and the net change is written once with Deltas.
type Plan struct {
	before   map[string]int
	after    map[string]int
	maxRooms int
	capped   map[string]struct{}
}

// NewPlan copies counters. A maxRoomsPerDate of zero disables the release cap.
func NewPlan(counters map[string]int, maxRoomsPerDate int) *Plan {
	p := &Plan{
		before:   make(map[string]int, len(counters)),
		after:    make(map[string]int, len(counters)),
		maxRooms: maxRoomsPerDate,
		capped:   make(map[string]struct{}),
	}
	for date, n := range counters {
		p.before[date] = n
		p.after[date] = n
	}
	return p
}

// Release returns h.Rooms to every night of h. Counters never exceed the
// per-date maximum; clamped dates are reported by Capped.
func (p *Plan) Release(h Hold) error {
	dates, err := h.Dates()
	if err != nil {
		return err
	}
	for _, date := range dates {
		n := p.after[date] + h.Rooms
		if p.maxRooms > 0 && n > p.maxRooms {
			n = p.maxRooms
			p.capped[date] = struct{}{}
		}
		p.after[date] = n
	}
	return nil
}

// Commit takes h.Rooms from every night of h. Every night is checked before
// any counter moves, so a shortfall leaves the plan untouched.
func (p *Plan) Commit(h Hold) error {
	shortfall, err := FirstShortfall(p.after, h)
	if err != nil {
		return err
	}
	if shortfall != nil {
		return shortfall
	}

	dates, _ := h.Dates()
	for _, date := range dates {
		p.after[date] -= h.Rooms
	}
	return nil
}

// Deltas returns after-minus-before for every date that changed.
func (p *Plan) Deltas() map[string]int {
	deltas := make(map[string]int)
	for date, n := range p.after {
		if d := n - p.before[date]; d != 0 {
			deltas[date] = d
		}
	}
	return deltas
}

func (p *Plan) Counters() map[string]int {
	out := make(map[string]int, len(p.after))
	for date, n := range p.after {
		out[date] = n
	}
	return out
}

func (p *Plan) Capped() []string {
	dates := make([]string, 0, len(p.capped))
	for date := range p.capped {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
