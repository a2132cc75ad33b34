package digest

// Filter selects links during inspection. Zero-value fields match
// every link.
type Filter struct {
	Actor         string
	Kind          string
	CorrelationID string
}

// Summary aggregates the links selected by an inspection.
type Summary struct {
	Total          int            `json:"total"`
	ByKind         map[string]int `json:"by_kind"`
	ByActor        map[string]int `json:"by_actor"`
	FirstTimestamp string         `json:"first_timestamp,omitempty"`
	LastTimestamp  string         `json:"last_timestamp,omitempty"`
}

// InspectResult is a filtered view of a chain.
type InspectResult struct {
	Links   []Link  `json:"links"`
	Summary Summary `json:"summary"`
}

// Inspect returns the links matching the filter, in append order, with
// summary counts by kind and actor.
func (c *Chain) Inspect(f Filter) InspectResult {
	res := InspectResult{
		Summary: Summary{ByKind: map[string]int{}, ByActor: map[string]int{}},
	}
	for _, link := range c.Links() {
		e := link.Entry
		if f.Actor != "" && e.Actor != f.Actor {
			continue
		}
		if f.Kind != "" && e.Kind != f.Kind {
			continue
		}
		if f.CorrelationID != "" && e.CorrelationID != f.CorrelationID {
			continue
		}
		res.Links = append(res.Links, link)
		res.Summary.Total++
		res.Summary.ByKind[e.Kind]++
		res.Summary.ByActor[e.Actor]++
		if res.Summary.FirstTimestamp == "" {
			res.Summary.FirstTimestamp = e.Timestamp
		}
		res.Summary.LastTimestamp = e.Timestamp
	}
	return res
}
