package parser

// GroupBySeries buckets records by series in order of first appearance.
// Records without a series go to a trailing OtherModelsSeries group.
func GroupBySeries(records []ModelRecord) []SeriesGroup {
	groups := []SeriesGroup{}
	index := map[string]int{}
	var others []ModelRecord

	for _, r := range records {
		if r.Series == nil {
			others = append(others, r)
			continue
		}
		i, ok := index[*r.Series]
		if !ok {
			i = len(groups)
			index[*r.Series] = i
			groups = append(groups, SeriesGroup{Series: *r.Series})
		}
		groups[i].Records = append(groups[i].Records, r)
	}

	if len(others) > 0 {
		groups = append(groups, SeriesGroup{Series: OtherModelsSeries, Records: others})
	}
	return groups
}
