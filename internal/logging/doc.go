// Package logging provides the leveled, structured logger used across the
// troubleshooter.
//
// Initialize the logger once at startup and fetch named loggers per component:
//
//	logging.Initialize("info", map[string]string{"diagnosis.*": "debug"})
//	logger := logging.GetLogger("diagnosis.runner")
//	logger.Info("walking %s", failure)
//	logger.InfoWithFields("run complete",
//	    logging.Field("partition_id", partitionID),
//	    logging.Field("chains", len(chains)),
//	)
//
// Loggers are immutable. WithField, WithFields and WithContext return new
// loggers, so a logger can be shared between goroutines freely.
//
// Package levels override the default level. Patterns are either exact
// logger names ("ontology.watcher") or prefix wildcards ("graph.*"); the
// longest matching pattern wins.
//
// When a context carrying an OpenTelemetry span is attached through
// WithContext, trace_id and span_id are added to every line.
//
// Set LOG_TIMESTAMP to pin the timestamp in tests.
package logging
