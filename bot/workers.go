package bot

import (
	"context"
	"time"

	"incoin/config"
	"incoin/domain/services"
	"incoin/events"
	"incoin/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// nextDailyRun returns the next occurrence of hour:00 in loc strictly after now
func nextDailyRun(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, 0, 0, 0, loc)
	}
	return next
}

// isInterestDay reports whether the settlement at t also pays weekly interest
func isInterestDay(t time.Time, weekday time.Weekday, loc *time.Location) bool {
	return t.In(loc).Weekday() == weekday
}

// StartSettlementWorker runs company payroll every day at the payout hour and
// weekly bank interest on the configured weekday.
// Returns a cleanup function to stop the worker gracefully
func (b *Bot) StartSettlementWorker(ctx context.Context) func() {
	cfg := config.Get()
	loc := cfg.Location()
	stopChan := make(chan struct{})

	settle := func(at time.Time) {
		// Records are stamped with the schedule slot, not the processing instant
		slot := func() time.Time { return at }
		guilds := b.guildIDs()
		log.WithFields(log.Fields{
			"guilds":   len(guilds),
			"interest": isInterestDay(at, cfg.InterestWeekday, loc),
		}).Info("Running daily settlement")

		for _, guildID := range guilds {
			b.runSettlementJob(ctx, guildID, observability.JobPayroll, slot, func(deps services.Dependencies) error {
				report, err := services.NewPayrollService(deps).SettleDaily(ctx)
				if report != nil {
					log.WithFields(log.Fields{
						"guild_id": guildID,
						"checked":  report.Checked,
						"paid":     report.Paid,
						"bankrupt": len(report.Bankrupt),
					}).Info("Payroll settled")
				}
				return err
			})

			if !isInterestDay(at, cfg.InterestWeekday, loc) {
				continue
			}
			b.runSettlementJob(ctx, guildID, observability.JobInterest, slot, func(deps services.Dependencies) error {
				report, err := services.NewInterestService(deps).ApplyWeekly(ctx)
				if report != nil {
					log.WithFields(log.Fields{
						"guild_id":  guildID,
						"checked":   report.Checked,
						"credited":  report.Credited,
						"penalized": report.Penalized,
					}).Info("Weekly interest applied")
				}
				return err
			})
		}
	}

	go func() {
		log.Infof("Settlement worker started, payroll at %02d:00 %s", cfg.PayoutHour, loc)

		for {
			next := nextDailyRun(time.Now(), cfg.PayoutHour, loc)
			wait := time.Until(next)
			log.Infof("Settlement worker waiting %v until next run", wait)

			select {
			case <-ctx.Done():
				log.Info("Settlement worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Settlement worker shutting down (stop requested)...")
				return
			case <-time.After(wait):
				settle(next)
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// StartStockWorker moves stock prices on a fixed interval
// Returns a cleanup function to stop the worker gracefully
func (b *Bot) StartStockWorker(ctx context.Context) func() {
	interval := config.Get().StockUpdateInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})

	updatePrices := func() {
		for _, guildID := range b.guildIDs() {
			b.runSettlementJob(ctx, guildID, observability.JobStocks, time.Now, func(deps services.Dependencies) error {
				report, err := services.NewStockService(deps).UpdatePrices(ctx)
				if report != nil && len(report.Removed) > 0 {
					log.WithFields(log.Fields{
						"guild_id": guildID,
						"removed":  report.Removed,
					}).Info("Removed stocks of dissolved companies")
				}
				return err
			})
		}
	}

	go func() {
		log.Infof("Stock worker started, updating every %v", interval)

		for {
			select {
			case <-ctx.Done():
				log.Info("Stock worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Stock worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				updatePrices()
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
	}
}

// runSettlementJob runs one scheduled job for a guild and records its outcome
func (b *Bot) runSettlementJob(ctx context.Context, guildID int64, job string, now func() time.Time, fn func(deps services.Dependencies) error) {
	start := time.Now()
	tx := events.NewTransactionalBus(b.bus)
	deps := services.Dependencies{
		Store:     b.stores.Guild(guildID),
		Publisher: tx,
		Notifier:  b.notifier,
		Random:    services.NewRandomSource(),
		Now:       now,
	}

	err := fn(deps)
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"job":      job,
			"error":    err,
		}).Error("Scheduled job failed")
	}
	// Records already written stay written, so their events are delivered too
	tx.Flush(ctx)

	if b.metrics != nil {
		b.metrics.RecordSettlement(ctx, job, time.Since(start), err)
	}
}
