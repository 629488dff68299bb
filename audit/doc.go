/*
Package audit runs quality checks over a loaded shape store and assembles
the results into a report.

Checks live in an ordered registry. Most are per-shape accumulators: the
runner splits the store's shapes across a worker pool, each worker feeds
its shapes to a private accumulator set, and the sets merge in shape order
before finalizing, so a report is identical no matter how many workers
ran. Dataset-wide checks (shape similarity, realtime conformance) register
a Global function instead and run once after the pool drains.

# Basic Usage

	cfg := audit.DefaultConfig()
	runner := audit.NewRunner(audit.DefaultRegistry(), logger)
	report := runner.Run("my-feed", &audit.Context{
	    Store:  store,
	    Config: cfg,
	})
	fmt.Println(report.Summary.Overall)

Every check yields a CheckResult: a status (success, warning or error),
zero or more findings naming the affected shape ids (capped), and a
metrics map with check-specific detail. Adding a check means implementing
Accumulator (or a Global func) and registering it; the runner and report
layers need no changes.

# Statuses

A check's status reflects only its own observations. The report summary
takes the worst status across all checks, so one failing check marks the
dataset while the remaining results stay readable on their own.
*/
package audit
