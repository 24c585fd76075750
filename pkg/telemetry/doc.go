// Package telemetry provides observability for Ganymede.
//
// # Components
//
//   - logging: structured logging over log/slog
//   - metrics: Prometheus metrics for rule evaluation
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	em := metrics.NewEvaluationMetrics("ganymede")
//	em.RecordEvaluation(true, 80*time.Microsecond)
//	http.Handle("/metrics", em.Handler())
package telemetry
