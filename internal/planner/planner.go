// Package planner runs plan request cycles: it checks input, reads the
// session token, calls the backend, validates and derives the allocation,
// and records the outcome in the presentation state.
package planner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/cbudget/internal/budgetapi"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/pipeline"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/state"
)

// Generator sends one plan request and returns the raw body.
type Generator interface {
	Generate(ctx context.Context, req budgetapi.GenerateRequest, token string) ([]byte, error)
}

// Recorder persists successful plans.
type Recorder interface {
	SavePlan(ctx context.Context, p model.Plan) (string, error)
}

// Planner is shared by the CLI and TUI front ends.
type Planner struct {
	api      Generator
	sessions session.Provider
	machine  *state.Machine
	mu       sync.RWMutex
	basis    model.PercentBasis
	history  Recorder
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithBasis selects the percent basis. The default is the declared budget.
func WithBasis(b model.PercentBasis) Option {
	return func(p *Planner) { p.basis = b }
}

// WithRecorder saves every successful plan to r.
func WithRecorder(r Recorder) Option {
	return func(p *Planner) { p.history = r }
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Planner) { p.log = l }
}

// WithClock overrides time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// New creates a planner with a fresh Idle state machine.
func New(api Generator, sessions session.Provider, opts ...Option) *Planner {
	p := &Planner{
		api:      api,
		sessions: sessions,
		machine:  state.New(),
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Basis returns the configured percent basis.
func (p *Planner) Basis() model.PercentBasis {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.basis
}

// SetBasis changes the percent basis for cycles that derive after the call.
func (p *Planner) SetBasis(b model.PercentBasis) {
	p.mu.Lock()
	p.basis = b
	p.mu.Unlock()
}

// Reset clears a finished result back to Idle. See state.Machine.Reset.
func (p *Planner) Reset() error { return p.machine.Reset() }

// View returns the current presentation snapshot.
func (p *Planner) View() state.View { return p.machine.View() }

// Begin starts a cycle. See state.Machine.Begin.
func (p *Planner) Begin(in model.BudgetInput) (state.Cycle, error) {
	c, err := p.machine.Begin(in)
	switch {
	case errors.Is(err, state.ErrBusy):
		p.log.Debug().Msg("trigger ignored, request in flight")
	case err != nil:
		p.log.Info().Float64("budget", in.TotalBudget).Msg("trigger rejected, invalid budget")
	}
	return c, err
}

// Run performs the request for cycle c and resolves it. It reports whether
// the outcome was applied.
func (p *Planner) Run(ctx context.Context, c state.Cycle, in model.BudgetInput, sel model.Selection) bool {
	applied, _ := p.run(ctx, c, in, sel)
	return applied
}

// Generate runs a whole cycle synchronously and returns the final view.
// The returned error is the classified failure, if any.
func (p *Planner) Generate(ctx context.Context, in model.BudgetInput, sel model.Selection) (state.View, error) {
	c, err := p.Begin(in)
	if err != nil {
		return p.machine.View(), err
	}
	_, err = p.run(ctx, c, in, sel)
	return p.machine.View(), err
}

func (p *Planner) run(ctx context.Context, c state.Cycle, in model.BudgetInput, sel model.Selection) (bool, error) {
	plan, err := p.Fetch(ctx, in, sel)
	if err != nil {
		p.log.Warn().Err(err).Str("kind", model.KindOf(err).String()).Uint64("cycle", uint64(c)).Msg("plan request failed")
	} else if p.history != nil {
		if _, herr := p.history.SavePlan(ctx, plan); herr != nil {
			p.log.Warn().Err(herr).Msg("saving plan history")
		}
	}
	return p.machine.Resolve(c, state.Outcome{Plan: plan, Err: err}), err
}

// Fetch performs the token read, request, validation and derivation
// without touching the state machine.
func (p *Planner) Fetch(ctx context.Context, in model.BudgetInput, sel model.Selection) (model.Plan, error) {
	if err := model.CheckInput(in); err != nil {
		return model.Plan{}, model.Fail(model.KindInput, err)
	}

	token, err := p.token(ctx)
	if err != nil {
		return model.Plan{}, err
	}

	req := budgetapi.NewGenerateRequest(in, sel)
	body, err := p.api.Generate(ctx, req, token)
	if err != nil {
		return model.Plan{}, err
	}

	resp, err := pipeline.Validate(body)
	if err != nil {
		p.log.Debug().Err(err).Int("bytes", len(body)).Msg("rejected backend response")
		return model.Plan{}, err
	}

	alloc := pipeline.Derive(resp.Breakdown, in.TotalBudget, p.Basis())
	p.log.Info().
		Str("city", in.City).
		Int("items", len(alloc.Items)).
		Float64("sum", alloc.SumOfAmounts).
		Float64("budget", in.TotalBudget).
		Msg("plan derived")

	return model.Plan{
		City:       in.City,
		Selected:   req.SelectedCategories,
		Text:       resp.PlanText,
		Allocation: alloc,
	}, nil
}

// token reads and checks the session token. A missing or expired token
// is an auth failure and no request is sent.
func (p *Planner) token(ctx context.Context) (string, error) {
	if p.sessions == nil {
		return "", model.Fail(model.KindAuth, session.ErrNoToken)
	}
	tok, err := p.sessions.Token(ctx)
	if err != nil {
		return "", model.Fail(model.KindAuth, err)
	}
	if err := session.CheckExpiry(tok, p.now()); err != nil {
		return "", model.Fail(model.KindAuth, err)
	}
	return tok, nil
}
