package diagnosis

import "github.com/moolen/troubleshooter/internal/ontology"

// ExtractChecks joins isTriggeredBy edges with the consume edges of their
// triggers and returns the distinct (trigger, consume, channel) triples in
// first-discovery order.
func ExtractChecks(m *DepthMap) []Triple {
	flat := m.Flatten()

	consumes := map[string][]Triple{}
	for _, t := range flat {
		if t.Predicate == ontology.RelConsume {
			consumes[t.Subject] = append(consumes[t.Subject], t)
		}
	}

	out := []Triple{}
	seen := map[Triple]struct{}{}
	for _, t1 := range flat {
		if t1.Predicate != ontology.RelIsTriggeredBy {
			continue
		}
		for _, t2 := range consumes[t1.Object] {
			check := Triple{Subject: t1.Object, Predicate: t2.Predicate, Object: t2.Object}
			if _, dup := seen[check]; dup {
				continue
			}
			seen[check] = struct{}{}
			out = append(out, check)
		}
	}
	return out
}
