package vad

// Group is a run of consecutive regions sent together for transcription.
type Group struct {
	Start   float64
	End     float64
	Regions []Region
}

// Duration returns End - Start.
func (g Group) Duration() float64 {
	return g.End - g.Start
}

// Span returns the group bounds as a single region.
func (g Group) Span() Region {
	return Region{Start: g.Start, End: g.End}
}

// GroupOptions controls region grouping.
type GroupOptions struct {
	MaxGroupDuration float64 // seconds
	MaxGap           float64 // seconds
}

// DefaultGroupOptions returns the stock grouping settings.
func DefaultGroupOptions() GroupOptions {
	return GroupOptions{
		MaxGroupDuration: 30.0,
		MaxGap:           2.0,
	}
}

// GroupRegions greedily merges chronologically ordered regions. A region
// joins the current group only if the silence before it is at most MaxGap
// and the extended group would last at most MaxGroupDuration. A single
// region longer than MaxGroupDuration still forms its own group.
func GroupRegions(regions []Region, opts GroupOptions) []Group {
	if len(regions) == 0 {
		return nil
	}

	var groups []Group
	cur := Group{Start: regions[0].Start, End: regions[0].End, Regions: []Region{regions[0]}}

	for _, r := range regions[1:] {
		gap := r.Start - cur.End
		if gap <= opts.MaxGap && r.End-cur.Start <= opts.MaxGroupDuration {
			cur.End = r.End
			cur.Regions = append(cur.Regions, r)
			continue
		}
		groups = append(groups, cur)
		cur = Group{Start: r.Start, End: r.End, Regions: []Region{r}}
	}
	return append(groups, cur)
}
