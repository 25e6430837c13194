// Package identity provides the rotating User-Agent pool shared by all HTTP
// sources. One agent is drawn per source batch, not per request.
package identity

import (
	_ "embed"
	"encoding/json"
	"math/rand/v2"
	"os"

	"github.com/rotisserie/eris"
)

//go:embed agents.json
var defaultAgents []byte

// Pool holds the User-Agent strings a search batch can identify as.
type Pool struct {
	agents []string
}

type agentEntry struct {
	UA string `json:"ua"`
}

// Default returns the pool built from the embedded agent list.
func Default() *Pool {
	p, err := parse(defaultAgents)
	if err != nil {
		// The embedded list is validated by tests; an unparsable build is a
		// packaging error.
		panic(err)
	}
	return p
}

// Load reads a pool from a JSON file with the same shape as the embedded list:
// an array of {"ua": "..."} objects.
func Load(path string) (*Pool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "identity: read agents file %s", path)
	}
	return parse(raw)
}

func parse(raw []byte) (*Pool, error) {
	var entries []agentEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, eris.Wrap(err, "identity: parse agents")
	}

	agents := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.UA != "" {
			agents = append(agents, e.UA)
		}
	}
	if len(agents) == 0 {
		return nil, eris.New("identity: agent list is empty")
	}
	return &Pool{agents: agents}, nil
}

// Pick returns a randomly chosen User-Agent from the pool.
func (p *Pool) Pick() string {
	return p.agents[rand.IntN(len(p.agents))]
}

// Len returns the number of agents in the pool.
func (p *Pool) Len() int {
	return len(p.agents)
}
