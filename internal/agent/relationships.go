package agent

import "github.com/efreeman/statecraft/pkg/board"

// Relationship is one power's stance toward another.
type Relationship int

const (
	Enemy Relationship = iota
	Unfriendly
	Neutral
	Friendly
	Ally
)

var relationshipNames = [...]string{"Enemy", "Unfriendly", "Neutral", "Friendly", "Ally"}

func (r Relationship) String() string {
	if r < Enemy || r > Ally {
		return "Neutral"
	}
	return relationshipNames[r]
}

// ParseRelationship maps a label back to a level. Unknown labels are Neutral,
// since models occasionally invent their own vocabulary.
func ParseRelationship(s string) Relationship {
	for i, name := range relationshipNames {
		if s == name {
			return Relationship(i)
		}
	}
	return Neutral
}

// Relationship returns this agent's stance toward another power.
func (a *Agent) Relationship(other board.Power) Relationship {
	a.mu.Lock()
	defer a.mu.Unlock()
	if r, ok := a.relationships[other]; ok {
		return r
	}
	return Neutral
}

// SetRelationship updates the stance toward another power.
func (a *Agent) SetRelationship(other board.Power, r Relationship) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.relationships[other] = r
}
