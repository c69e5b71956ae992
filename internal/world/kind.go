package world

import (
	"fmt"
	"strings"
)

// Kind is the rendered entity type. Only KindHumanoid is player-like and
// therefore subject to the player-list announce protocol.
type Kind uint8

const (
	KindHumanoid Kind = iota
	KindVillager
	KindZombie
	KindSkeleton
	KindWolf
)

var kindNames = map[Kind]string{
	KindHumanoid: "humanoid",
	KindVillager: "villager",
	KindZombie:   "zombie",
	KindSkeleton: "skeleton",
	KindWolf:     "wolf",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) IsHumanoid() bool { return k == KindHumanoid }

// ParseKind accepts the lower-case names used in spawn lists and scripts.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "player" {
		return KindHumanoid, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown entity kind %q", s)
}
