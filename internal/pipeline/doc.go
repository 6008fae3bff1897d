// Package pipeline orchestrates a camstitch run: clip discovery and
// probing, concatenation into an intermediate, face audio conditioning,
// the composite pass, and the atomic commit of the final render.
//
// Types:
//   - Clip, ClipFile: discovered and probed inputs (discover.go, collect.go)
//   - StageError: every failure carries the stage and an error kind (errors.go)
//   - Workspace: per-run scratch directory, removed on every exit path (workspace.go)
//   - RunStats: counters for the summary table (stats.go)
//
// Functions:
//   - Run(ctx, cfg, log): the full flow (runner.go)
//   - ListClips(ctx, cfg, log): the `clips` report (analyze.go)
package pipeline
