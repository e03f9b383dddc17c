// Package notification sends tidbits to devices on their configured interval.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/sync/errgroup"

	"github.com/at-ishikawa/tidbit/internal/assets"
	"github.com/at-ishikawa/tidbit/internal/clock"
	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/device"
	"github.com/at-ishikawa/tidbit/internal/observability"
	"github.com/at-ishikawa/tidbit/internal/push"
	"github.com/at-ishikawa/tidbit/internal/random"
)

// FeedbackCategoryID is the notification category carrying the knew/didn't-know actions.
const FeedbackCategoryID = "tidbit_feedback"

// SkipReason explains why a device got no notification in a tick.
type SkipReason string

const (
	SkipNoInterval   SkipReason = "no_interval"
	SkipInterval     SkipReason = "interval"
	SkipQuietHours   SkipReason = "quiet_hours"
	SkipNoCategories SkipReason = "no_categories"
	SkipNoContent    SkipReason = "no_content"
	SkipClaimed      SkipReason = "claimed"
	SkipError        SkipReason = "error"
)

// Config controls the dispatcher.
type Config struct {
	Workers            int
	DeviceTimeout      time.Duration
	RegistryTimeout    time.Duration
	RegistryAttempts   uint
	RegistryRetryDelay time.Duration
	MaxBatchSize       int
	// ClaimRetention is how long claims are kept before they are pruned.
	ClaimRetention time.Duration
}

// DefaultConfig returns the production dispatcher settings.
func DefaultConfig() Config {
	return Config{
		Workers:            16,
		DeviceTimeout:      5 * time.Second,
		RegistryTimeout:    15 * time.Second,
		RegistryAttempts:   3,
		RegistryRetryDelay: time.Second,
		MaxBatchSize:       push.ExpoMaxBatchSize,
		ClaimRetention:     24 * time.Hour,
	}
}

// Result summarizes one tick.
type Result struct {
	Tick     time.Time
	Devices  int
	Eligible int
	Skipped  map[SkipReason]int
	Sent     int
	Failed   int
}

// Dispatcher evaluates every enabled device once per minute and sends a
// random tidbit from its categories to the devices that are due.
type Dispatcher struct {
	registry device.Registry
	content  content.Store
	gateway  push.Gateway
	renderer *assets.NotificationRenderer
	config   Config

	claimer Claimer
	metrics *observability.DispatchMetrics
	clock   clock.Clock
	random  *random.Source
	logger  *slog.Logger
	after   func(time.Duration) <-chan time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClaimer enables per-minute claims for running several dispatchers.
func WithClaimer(c Claimer) Option {
	return func(d *Dispatcher) { d.claimer = c }
}

func WithMetrics(m *observability.DispatchMetrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithClock(c clock.Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

func WithRandom(r *random.Source) Option {
	return func(d *Dispatcher) { d.random = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates a Dispatcher. Zero fields of cfg fall back to DefaultConfig.
func NewDispatcher(
	registry device.Registry,
	contentStore content.Store,
	gateway push.Gateway,
	renderer *assets.NotificationRenderer,
	cfg Config,
	opts ...Option,
) *Dispatcher {
	defaults := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.DeviceTimeout <= 0 {
		cfg.DeviceTimeout = defaults.DeviceTimeout
	}
	if cfg.RegistryTimeout <= 0 {
		cfg.RegistryTimeout = defaults.RegistryTimeout
	}
	if cfg.RegistryAttempts == 0 {
		cfg.RegistryAttempts = defaults.RegistryAttempts
	}
	if cfg.RegistryRetryDelay <= 0 {
		cfg.RegistryRetryDelay = defaults.RegistryRetryDelay
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = defaults.MaxBatchSize
	}
	if cfg.ClaimRetention <= 0 {
		cfg.ClaimRetention = defaults.ClaimRetention
	}

	d := &Dispatcher{
		registry: registry,
		content:  contentStore,
		gateway:  gateway,
		renderer: renderer,
		config:   cfg,
		clock:    clock.System(),
		random:   random.NewSystem(),
		logger:   slog.Default(),
		after:    time.After,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run ticks on every minute boundary until ctx is cancelled.
// A failed or panicking tick is logged and the next minute is tried again.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("notification dispatcher started", "workers", d.config.Workers)
	for {
		now := d.clock.Now()
		wait := now.Truncate(time.Minute).Add(time.Minute).Sub(now)
		select {
		case <-ctx.Done():
			d.logger.Info("notification dispatcher stopped")
			return nil
		case <-d.after(wait):
		}

		if _, err := d.safeTick(ctx, d.clock.Now()); err != nil {
			d.logger.Error("dispatch tick failed", "error", err)
		}
	}
}

func (d *Dispatcher) safeTick(ctx context.Context, now time.Time) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.TickCompleted("panic", 0)
			err = fmt.Errorf("dispatch tick panicked: %v", r)
		}
	}()
	return d.Tick(ctx, now)
}

type evaluation struct {
	pref   device.Preference
	pool   []content.Tidbit
	reason SkipReason
}

// Tick notifies every device due at now. Registry and content failures abort
// the tick; failures of single devices or batches are counted in the result.
func (d *Dispatcher) Tick(ctx context.Context, now time.Time) (Result, error) {
	started := d.clock.Now()
	now = now.UTC().Truncate(time.Minute)
	result := Result{Tick: now, Skipped: make(map[SkipReason]int)}

	devices, err := d.listDevices(ctx)
	if err != nil {
		d.metrics.TickCompleted("registry_error", d.clock.Now().Sub(started))
		return result, fmt.Errorf("listDevices() > %w", err)
	}
	result.Devices = len(devices)
	d.metrics.DevicesListed(len(devices))

	catalog, err := content.LoadCatalog(ctx, d.content)
	if err != nil {
		d.metrics.TickCompleted("content_error", d.clock.Now().Sub(started))
		return result, fmt.Errorf("content.LoadCatalog() > %w", err)
	}

	evaluations := d.evaluateAll(ctx, now, devices, catalog)

	categoryNames := make(map[string]string, len(catalog.Categories()))
	for _, c := range catalog.Categories() {
		categoryNames[c.ID] = c.Name
	}
	var messages []push.Message
	for _, e := range evaluations {
		if e.reason != "" {
			result.Skipped[e.reason]++
			d.metrics.Skipped(string(e.reason))
			continue
		}
		message, err := d.buildMessage(e, categoryNames)
		if err != nil {
			d.logger.Warn("failed to build a notification", "token", e.pref.Token, "error", err)
			result.Skipped[SkipError]++
			d.metrics.Skipped(string(SkipError))
			continue
		}
		messages = append(messages, message)
	}
	result.Eligible = len(messages)

	for _, chunk := range push.Chunk(messages, d.config.MaxBatchSize) {
		sent, failed := d.sendChunk(ctx, chunk)
		result.Sent += sent
		result.Failed += failed
	}

	d.prune(ctx, now)
	d.metrics.TickCompleted("ok", d.clock.Now().Sub(started))
	d.logger.Info("dispatch tick completed",
		slog.Time("tick", now),
		"devices", result.Devices,
		"eligible", result.Eligible,
		"sent", result.Sent,
		"failed", result.Failed,
	)
	return result, nil
}

func (d *Dispatcher) listDevices(ctx context.Context) ([]device.Preference, error) {
	ctx, cancel := context.WithTimeout(ctx, d.config.RegistryTimeout)
	defer cancel()

	var devices []device.Preference
	if err := retry.Do(
		func() error {
			result, err := d.registry.ListEnabled(ctx)
			if err != nil {
				d.logger.Warn("failed to list devices", "error", err)
				return err
			}
			devices = result
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(d.config.RegistryAttempts),
		retry.Delay(d.config.RegistryRetryDelay),
		retry.LastErrorOnly(true),
	); err != nil {
		return nil, err
	}
	return devices, nil
}

func (d *Dispatcher) evaluateAll(ctx context.Context, now time.Time, devices []device.Preference, catalog *content.Catalog) []evaluation {
	evaluations := make([]evaluation, len(devices))
	var g errgroup.Group
	g.SetLimit(d.config.Workers)
	for i, pref := range devices {
		g.Go(func() error {
			evaluations[i] = d.evaluate(ctx, now, pref, catalog)
			return nil
		})
	}
	_ = g.Wait()
	return evaluations
}

func (d *Dispatcher) evaluate(ctx context.Context, now time.Time, pref device.Preference, catalog *content.Catalog) (e evaluation) {
	e.pref = pref
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("device evaluation panicked", "token", pref.Token, "panic", r)
			e.reason = SkipError
		}
	}()

	if pref.NotificationInterval <= 0 {
		e.reason = SkipNoInterval
		return e
	}
	localMinutes := LocalMinutes(now, pref.TimezoneOffsetMinutes)
	if !IntervalEligible(localMinutes, pref.NotificationInterval) {
		e.reason = SkipInterval
		return e
	}
	if pref.QuietHoursEnabled && InQuietHours(localMinutes/60, pref.QuietHoursStart, pref.QuietHoursEnd) {
		e.reason = SkipQuietHours
		return e
	}
	if len(pref.SelectedCategories) == 0 {
		e.reason = SkipNoCategories
		return e
	}
	e.pool = catalog.Tidbits(pref.SelectedCategories)
	if len(e.pool) == 0 {
		e.reason = SkipNoContent
		return e
	}

	if d.claimer != nil {
		ctx, cancel := context.WithTimeout(ctx, d.config.DeviceTimeout)
		defer cancel()
		claimed, err := d.claimer.Claim(ctx, now, pref.Token)
		if err != nil {
			d.logger.Warn("failed to claim a device", "token", pref.Token, "error", err)
			e.reason = SkipError
			return e
		}
		if !claimed {
			e.reason = SkipClaimed
			return e
		}
	}
	return e
}

func (d *Dispatcher) buildMessage(e evaluation, categoryNames map[string]string) (push.Message, error) {
	tidbit, _ := random.Pick(d.random, e.pool)
	body, err := d.renderer.RenderNotification(assets.NotificationTemplate{
		TidbitID:     tidbit.ID,
		Text:         tidbit.Text,
		CategoryID:   tidbit.Category,
		CategoryName: categoryNames[tidbit.Category],
	})
	if err != nil {
		return push.Message{}, fmt.Errorf("renderer.RenderNotification() > %w", err)
	}
	return push.Message{
		To:    e.pref.Token,
		Title: assets.NotificationTitle,
		Body:  body,
		Data: map[string]string{
			"tidbitId": tidbit.ID,
			"category": tidbit.Category,
		},
		Sound:      "default",
		CategoryID: FeedbackCategoryID,
	}, nil
}

func (d *Dispatcher) sendChunk(ctx context.Context, chunk []push.Message) (sent int, failed int) {
	d.metrics.BatchSent(len(chunk))
	tickets, err := d.gateway.Send(ctx, chunk)
	if err != nil {
		d.logger.Warn("failed to send a notification batch", "size", len(chunk), "error", err)
		d.metrics.Failed("batch", len(chunk))
		return 0, len(chunk)
	}

	for i, ticket := range tickets {
		if ticket.Status == push.TicketStatusOK {
			sent++
			continue
		}
		failed++
		token := ""
		if i < len(chunk) {
			token = chunk[i].To
		}
		d.logger.Warn("push ticket error",
			"token", token,
			"message", ticket.Message,
			"details", ticket.Details,
		)
	}
	// Messages without a ticket are treated as failed.
	if missing := len(chunk) - len(tickets); missing > 0 {
		failed += missing
	}
	d.metrics.Sent(sent)
	d.metrics.Failed("ticket", failed)
	return sent, failed
}

func (d *Dispatcher) prune(ctx context.Context, now time.Time) {
	pruner, ok := d.claimer.(Pruner)
	if !ok || now.Minute() != 0 {
		return
	}
	deleted, err := pruner.Prune(ctx, now.Add(-d.config.ClaimRetention))
	if err != nil {
		d.logger.Warn("failed to prune dispatch claims", "error", err)
		return
	}
	d.logger.Debug("pruned dispatch claims", "deleted", deleted)
}
