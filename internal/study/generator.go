package study

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/kvstore"
	"github.com/at-ishikawa/tidbit/internal/random"
)

// PlanKey is the state store key of the daily plan.
const PlanKey = "daily_study_plan"

// PlanConfig controls plan generation.
type PlanConfig struct {
	// DefaultTarget is the plan size used when no target is given.
	DefaultTarget int
	// DueRatio is the maximum share of due reviews in a generated set.
	DueRatio         float64
	MinutesPerTidbit int
	// Location decides where a day starts and ends.
	Location *time.Location
}

// DefaultPlanConfig returns the standard 10-tidbit, 60% due plan.
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		DefaultTarget:    10,
		DueRatio:         0.6,
		MinutesPerTidbit: 1,
		Location:         time.Local,
	}
}

// SessionPlan is the day-scoped study plan.
type SessionPlan struct {
	Date             time.Time        `json:"date"`
	Tidbits          []content.Tidbit `json:"tidbits"`
	DueCount         int              `json:"dueCount"`
	NewCount         int              `json:"newCount"`
	TotalCount       int              `json:"totalCount"`
	EstimatedMinutes int              `json:"estimatedMinutes"`
	Completed        bool             `json:"completed"`
	CompletedCount   int              `json:"completedCount"`
	CompletedAt      *time.Time       `json:"completedAt,omitempty"`
}

// Generator builds balanced sets of due and new tidbits.
type Generator struct {
	store   kvstore.Store
	engine  StateEngine
	content content.Store
	config  PlanConfig
	options
}

// NewGenerator creates a Generator. Zero fields of cfg fall back to DefaultPlanConfig.
func NewGenerator(store kvstore.Store, engine StateEngine, contentStore content.Store, cfg PlanConfig, opts ...Option) *Generator {
	defaults := DefaultPlanConfig()
	if cfg.DefaultTarget <= 0 {
		cfg.DefaultTarget = defaults.DefaultTarget
	}
	if cfg.DueRatio <= 0 || cfg.DueRatio > 1 {
		cfg.DueRatio = defaults.DueRatio
	}
	if cfg.MinutesPerTidbit <= 0 {
		cfg.MinutesPerTidbit = defaults.MinutesPerTidbit
	}
	if cfg.Location == nil {
		cfg.Location = defaults.Location
	}
	return &Generator{
		store:   store,
		engine:  engine,
		content: contentStore,
		config:  cfg,
		options: newOptions(opts),
	}
}

type selection struct {
	due     []content.Tidbit
	unseen  []content.Tidbit
	tidbits []content.Tidbit
}

// Generate returns up to target tidbits from categories, mixing due reviews
// with tidbits that have never been seen. A shorter result means there was
// not enough content.
func (g *Generator) Generate(ctx context.Context, target int, categories []string) ([]content.Tidbit, error) {
	sel, err := g.generate(ctx, target, categories)
	if err != nil {
		return nil, err
	}
	return sel.tidbits, nil
}

func (g *Generator) generate(ctx context.Context, target int, categories []string) (selection, error) {
	if len(categories) == 0 {
		g.logger.Warn("cannot generate a study set: no categories selected")
		return selection{}, nil
	}
	if target <= 0 {
		target = g.config.DefaultTarget
	}

	catalog, err := content.LoadCatalog(ctx, g.content)
	if err != nil {
		return selection{}, fmt.Errorf("content.LoadCatalog() > %w", err)
	}

	duePool := dueInCategories(ctx, g.engine, catalog, categories, g.clock.Now(), g.logger)
	newPool, err := unseenInCategories(ctx, g.engine, catalog, categories)
	if err != nil {
		return selection{}, err
	}

	dueQuota := min(len(duePool), int(math.Ceil(float64(target)*g.config.DueRatio)))
	newQuota := min(len(newPool), target-dueQuota)

	sel := selection{
		due:    random.Sample(g.random, duePool, dueQuota),
		unseen: random.Sample(g.random, newPool, newQuota),
	}
	combined := make([]content.Tidbit, 0, len(sel.due)+len(sel.unseen))
	combined = append(combined, sel.due...)
	combined = append(combined, sel.unseen...)
	sel.tidbits = random.Shuffle(g.random, combined)

	g.logger.Debug("generated study set",
		"target", target,
		"due", len(sel.due),
		"new", len(sel.unseen),
		"dueAvailable", len(duePool),
		"newAvailable", len(newPool),
	)
	return sel, nil
}

// DailyPlan returns today's plan, generating and persisting a new one when the
// stored plan is missing or from another day.
func (g *Generator) DailyPlan(ctx context.Context, categories []string) (*SessionPlan, error) {
	plan, err := g.todaysPlan(ctx)
	if err != nil {
		g.logger.Warn("regenerating unreadable daily plan", "error", err)
	}
	if plan != nil {
		return plan, nil
	}

	if len(categories) == 0 {
		g.logger.Warn("cannot generate a daily plan: no categories selected")
		return nil, nil
	}

	sel, err := g.generate(ctx, g.config.DefaultTarget, categories)
	if err != nil {
		return nil, err
	}
	plan = &SessionPlan{
		Date:             g.clock.Now(),
		Tidbits:          sel.tidbits,
		DueCount:         len(sel.due),
		NewCount:         len(sel.unseen),
		TotalCount:       len(sel.tidbits),
		EstimatedMinutes: len(sel.tidbits) * g.config.MinutesPerTidbit,
	}
	if plan.Tidbits == nil {
		plan.Tidbits = []content.Tidbit{}
	}
	if err := g.savePlan(ctx, plan); err != nil {
		return nil, err
	}
	g.logger.Info("generated daily plan",
		"due", plan.DueCount,
		"new", plan.NewCount,
		"estimatedMinutes", plan.EstimatedMinutes,
	)
	return plan, nil
}

// UpdatePlanProgress records how many plan tidbits are done and marks the plan
// completed once all of them are. It returns nil when there is no plan for today.
func (g *Generator) UpdatePlanProgress(ctx context.Context, completedCount int) (*SessionPlan, error) {
	return g.updatePlan(ctx, func(plan *SessionPlan, now time.Time) {
		plan.CompletedCount = completedCount
		if completedCount >= plan.TotalCount {
			plan.Completed = true
			plan.CompletedAt = &now
		}
	})
}

// MarkPlanCompleted marks today's plan completed regardless of its progress.
func (g *Generator) MarkPlanCompleted(ctx context.Context, completedCount int) (*SessionPlan, error) {
	return g.updatePlan(ctx, func(plan *SessionPlan, now time.Time) {
		plan.Completed = true
		plan.CompletedCount = completedCount
		plan.CompletedAt = &now
	})
}

// ClearPlan removes the stored plan.
func (g *Generator) ClearPlan(ctx context.Context) error {
	if err := g.store.Delete(ctx, PlanKey); err != nil {
		return fmt.Errorf("store.Delete() > %w", err)
	}
	return nil
}

func (g *Generator) updatePlan(ctx context.Context, update func(plan *SessionPlan, now time.Time)) (*SessionPlan, error) {
	plan, err := g.todaysPlan(ctx)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		g.logger.Warn("no daily plan for today")
		return nil, nil
	}
	update(plan, g.clock.Now())
	if err := g.savePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (g *Generator) todaysPlan(ctx context.Context) (*SessionPlan, error) {
	raw, ok, err := g.store.Get(ctx, PlanKey)
	if err != nil {
		return nil, fmt.Errorf("store.Get() > %w", err)
	}
	if !ok {
		return nil, nil
	}

	var plan SessionPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("json.Unmarshal() > %w", err)
	}
	if !sameDay(plan.Date, g.clock.Now(), g.config.Location) {
		g.logger.Debug("stored daily plan is from another day", slog.Time("date", plan.Date))
		return nil, nil
	}
	return &plan, nil
}

func (g *Generator) savePlan(ctx context.Context, plan *SessionPlan) error {
	b, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("json.Marshal() > %w", err)
	}
	if err := g.store.Set(ctx, PlanKey, string(b)); err != nil {
		return fmt.Errorf("store.Set() > %w", err)
	}
	return nil
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
