// Package diagnosis runs the troubleshooting pipeline for one failure mode
// and one job partition:
//
//	Walk        expand the failure's causal neighborhood from the knowledge graph
//	ExtractChecks  find the (trigger, consume, channel) edges that need a check
//	Executor    run the bound check for each of them on one warehouse connection
//	Correlate   join check outcomes back onto the discovered edges
//	Resolve     rebuild the Failure -> RootCause -> Trigger -> DataChannel chains
//	            whose terminal check evaluated true
//
// Runner wires the steps together. Pipeline steps return errors to the
// caller; they never log and swallow them.
package diagnosis
