package deploy

// Quota is the number of cards drawn per tier for one deployment hand.
type Quota struct {
	T1, T2, T3 int
}

// QuotaForThreat returns the tier quota for a threat level.
func QuotaForThreat(threatLevel int) Quota {
	switch {
	case threatLevel <= 3:
		return Quota{T1: 2, T2: 2, T3: 0}
	case threatLevel == 4:
		return Quota{T1: 1, T2: 2, T3: 1}
	default:
		return Quota{T1: 1, T2: 2, T3: 2}
	}
}

func (q Quota) forTier(tier int) int {
	switch tier {
	case 1:
		return q.T1
	case 2:
		return q.T2
	case 3:
		return q.T3
	default:
		return 0
	}
}

// SampleByTier draws, for tiers 1 to 3 in order, min(count, quota) cards of
// that tier from haystack without replacement. A tier with a zero quota
// consumes no randomness. The result holds each id at most once.
func SampleByTier(haystack []*Card, q Quota, rng Source) []*Card {
	var out []*Card
	for tier := 1; tier <= 3; tier++ {
		quota := q.forTier(tier)
		if quota <= 0 {
			continue
		}
		var group []*Card
		for _, c := range haystack {
			if c.Tier == tier {
				group = append(group, c)
			}
		}
		rands := rng.Perm(len(group))
		for i := 0; i < min(len(group), quota); i++ {
			out = append(out, group[rands[i]])
		}
	}
	return dedupe(out)
}
