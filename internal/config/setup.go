package config

import (
	"fmt"
	"strings"

	"github.com/zuckel/ImperialCommander2/internal/deploy"
)

// Setup converts the session settings into an engine Setup.
func (c Config) Setup() (deploy.Setup, error) {
	faction := deploy.Faction(c.Faction)
	switch faction {
	case deploy.FactionImperial, deploy.FactionMercenary:
	default:
		return deploy.Setup{}, fmt.Errorf("unknown faction %q", c.Faction)
	}
	var owned []string
	for _, e := range c.Expansions {
		if e = strings.TrimSpace(e); e != "" {
			owned = append(owned, e)
		}
	}
	return deploy.Setup{
		OwnedExpansions:    owned,
		Faction:            faction,
		AdaptiveDifficulty: c.AdaptiveDifficulty,
	}, nil
}
