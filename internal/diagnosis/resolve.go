package diagnosis

import "github.com/moolen/troubleshooter/internal/ontology"

// Resolve returns one chain per root cause of failure, trigger of that root
// cause, and consumed channel whose check is strictly true. Chains follow the
// discovery order of root causes, then triggers, then channels. A missing hop
// ends that branch without error.
func Resolve(c Correlation, failure string) []RootCauseChain {
	chains := []RootCauseChain{}
	for _, rootCause := range objects(c.Triples, failure, ontology.RelHasRootCause) {
		for _, trigger := range objects(c.Triples, rootCause, ontology.RelIsTriggeredBy) {
			for _, channel := range confirmedChannels(c.Checked, trigger) {
				chains = append(chains, RootCauseChain{
					RootCause:   rootCause,
					Trigger:     trigger,
					DataChannel: channel,
				})
			}
		}
	}
	return chains
}

func objects(triples []Triple, subject, predicate string) []string {
	var out []string
	for _, t := range triples {
		if t.Subject == subject && t.Predicate == predicate {
			out = append(out, t.Object)
		}
	}
	return out
}

func confirmedChannels(records []CheckRecord, trigger string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, r := range records {
		if r.Subject != trigger || r.Predicate != ontology.RelConsume || !r.Confirmed() {
			continue
		}
		if _, dup := seen[r.Object]; dup {
			continue
		}
		seen[r.Object] = struct{}{}
		out = append(out, r.Object)
	}
	return out
}
