// Package retention prunes old greeting history.
//
// A Pruner deletes greetings older than history.retention_days. The
// Scheduler runs it on the cron expression in history.prune_schedule
// (standard five-field syntax, e.g. "0 3 * * *" for 03:00 daily). An empty
// schedule or a retention of 0 days disables pruning.
//
//	pruner := retention.NewPruner(store, retention.Config{
//	    RetentionDays: 30,
//	    PruneSchedule: "0 3 * * *",
//	}, logger)
//	if err := pruner.Start(ctx); err != nil {
//	    return err
//	}
//	defer pruner.Stop()
package retention
