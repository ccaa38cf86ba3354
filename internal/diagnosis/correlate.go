package diagnosis

// Correlate left-joins the walk's triples with check records on
// (subject, predicate, object) and keeps the rows that carry a status.
// Records without a matching triple never appear in the output.
func Correlate(m *DepthMap, records []CheckRecord) Correlation {
	flat := m.Flatten()

	byTriple := make(map[Triple]CheckRecord, len(records))
	for _, r := range records {
		if r.Status == nil {
			continue
		}
		if _, ok := byTriple[r.Triple()]; !ok {
			byTriple[r.Triple()] = r
		}
	}

	checked := []CheckRecord{}
	for _, t := range flat {
		r, ok := byTriple[t]
		if !ok {
			continue
		}
		checked = append(checked, r)
	}

	if flat == nil {
		flat = []Triple{}
	}
	return Correlation{Checked: checked, Triples: flat}
}
