// Package health serves liveness, readiness and version endpoints for the
// watch command.
//
// Readiness aggregates component checks registered by name. watch registers
// two: "rules", which reports the outcome of the latest rule reload through a
// Latch, and "ledger", which pings the run ledger database.
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("rules", latch.Check)
//	checker.RegisterCheck("ledger", store.Ping)
//	health.Mount(mux, checker, &cfg.Telemetry.Health, health.VersionInfo{Version: version})
package health
