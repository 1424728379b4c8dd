// Package state holds the presentation state of the plan view and enforces
// its transitions: one request in flight at a time, and a result either
// fully replaces the previous one or clears it.
package state

import (
	"errors"
	"sync"

	"github.com/theirongolddev/cbudget/internal/model"
)

// Phase is the presentation phase.
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

var (
	// ErrBusy is returned when a trigger arrives while a request is in flight.
	ErrBusy = errors.New("state: request already in flight")
	// ErrInvalidBudget is returned when the trigger is rejected before any request.
	ErrInvalidBudget = model.ErrInvalidBudget
)

// Cycle identifies one request cycle.
type Cycle uint64

// Outcome is the result a request cycle resolves with.
type Outcome struct {
	Plan model.Plan
	Err  error
}

// View is a read-only snapshot of the machine.
type View struct {
	Phase   Phase
	Message string
	Plan    *model.Plan
	// Previous is the last successful plan, kept visible while Loading.
	Previous *model.Plan
	Cycle    Cycle
}

// Items returns the derived items of the current plan, or nil.
func (v View) Items() []model.DerivedItem {
	if v.Plan == nil {
		return nil
	}
	return v.Plan.Allocation.Items
}

// Machine is safe for concurrent use.
type Machine struct {
	mu       sync.Mutex
	phase    Phase
	message  string
	plan     *model.Plan
	previous *model.Plan
	seq      Cycle
	active   Cycle
}

// New returns a machine in the Idle phase.
func New() *Machine {
	return &Machine{}
}

// Begin starts a request cycle for in.
// While Loading the trigger is ignored and ErrBusy returned with no change.
// Input that fails model.CheckInput moves to Failed without starting a cycle.
func (m *Machine) Begin(in model.BudgetInput) (Cycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == Loading {
		return 0, ErrBusy
	}
	if err := model.CheckInput(in); err != nil {
		fail := model.Fail(model.KindInput, err)
		m.phase = Failed
		m.message = model.UserMessage(fail)
		m.plan = nil
		m.previous = nil
		return 0, fail
	}

	if m.phase == Success {
		m.previous = m.plan
	}
	m.plan = nil
	m.message = ""
	m.phase = Loading
	m.seq++
	m.active = m.seq
	return m.active, nil
}

// Resolve finishes cycle c. Outcomes for any cycle other than the active
// one are dropped and false is returned.
func (m *Machine) Resolve(c Cycle, out Outcome) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != Loading || c == 0 || c != m.active {
		return false
	}
	m.active = 0
	m.previous = nil

	if out.Err != nil {
		m.phase = Failed
		m.message = model.UserMessage(out.Err)
		m.plan = nil
		return true
	}

	p := clonePlan(out.Plan)
	m.phase = Success
	m.message = ""
	m.plan = &p
	return true
}

// Reset returns to Idle, forgetting results. It refuses while Loading.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == Loading {
		return ErrBusy
	}
	m.phase = Idle
	m.message = ""
	m.plan = nil
	m.previous = nil
	return nil
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// View returns a snapshot that later transitions cannot modify.
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{Phase: m.phase, Message: m.message, Cycle: m.active}
	if m.plan != nil {
		p := clonePlan(*m.plan)
		v.Plan = &p
	}
	if m.previous != nil {
		p := clonePlan(*m.previous)
		v.Previous = &p
	}
	return v
}

func clonePlan(p model.Plan) model.Plan {
	items := make([]model.DerivedItem, len(p.Allocation.Items))
	copy(items, p.Allocation.Items)
	p.Allocation.Items = items
	return p
}
