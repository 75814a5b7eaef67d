package deploy

// Availability filters. Each step is a pure set transformation over card
// definitions; the minus steps are set differences keyed by id and always
// walk the whole input.

// idSet is a set of group ids.
type idSet map[GroupID]bool

func newIDSet(ids []GroupID) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func instanceIDs(pool []*CardInstance) idSet {
	s := make(idSet, len(pool))
	for _, ci := range pool {
		s[ci.ID()] = true
	}
	return s
}

func cardIDs(cards []*Card) idSet {
	s := make(idSet, len(cards))
	for _, c := range cards {
		s[c.ID] = true
	}
	return s
}

// ownedPlusOther keeps cards from owned expansions plus the "Other" cards.
func ownedPlusOther(cards []*Card, owned map[string]bool) []*Card {
	var out []*Card
	for _, c := range cards {
		if c.Expansion == ExpansionOther || owned[c.Expansion] {
			out = append(out, c)
		}
	}
	return out
}

// byFaction keeps cards of the scenario faction. An empty faction keeps all.
func byFaction(cards []*Card, f Faction) []*Card {
	if f == "" {
		return cards
	}
	var out []*Card
	for _, c := range cards {
		if c.Faction == f {
			out = append(out, c)
		}
	}
	return out
}

// minus removes every card whose id is in ids.
func minus(cards []*Card, ids idSet) []*Card {
	out := make([]*Card, 0, len(cards))
	for _, c := range cards {
		if !ids[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// dedupe keeps the first card for each id, preserving order.
func dedupe(cards []*Card) []*Card {
	seen := make(idSet, len(cards))
	out := make([]*Card, 0, len(cards))
	for _, c := range cards {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// handCandidates is the candidate set for deployment hand construction:
// owned-or-other, faction, minus ignored, minus starting, minus reserved,
// minus groups already on the board.
func (e *Engine) handCandidates() []*Card {
	available := ownedPlusOther(e.catalog.Enemies(), e.owned)
	available = byFaction(available, e.setup.Faction)
	available = minus(available, e.ignored)
	available = minus(available, e.starting)
	available = minus(available, e.reserved)
	available = minus(available, instanceIDs(e.deployed))
	return available
}

// manualCandidates is the candidate set for the manual deployment list:
// owned-or-other plus all villains, minus in-hand, deployed, reserved,
// starting and earned villains. Both factions are included.
func (e *Engine) manualCandidates() []*Card {
	available := ownedPlusOther(e.catalog.Enemies(), e.owned)
	available = append(available, e.catalog.Villains()...)
	available = minus(available, instanceIDs(e.hand))
	available = minus(available, instanceIDs(e.deployed))
	available = minus(available, e.reserved)
	available = minus(available, e.starting)
	available = minus(available, newIDSet(e.earnedVillains))
	return available
}
