package npc

import "github.com/npcsync/server/internal/world"

// LabelTag carries the player-list label of a humanoid NPC for name-tag
// integrations. It is absent while the NPC is any other kind, which tells
// those integrations to key the entity by UUID instead.
var LabelTag = world.NewTag[string]("nametag-username")

var (
	// settlingTag is set on a client from the moment it starts joining an
	// instance until it confirms arrival.
	settlingTag = world.NewTag[bool]("npcsync-settling")

	attackTag   = world.NewTag[AttackFunc]("npcsync-on-attack")
	interactTag = world.NewTag[InteractFunc]("npcsync-on-interact")
)

func isSettling(c world.Client) bool {
	v, _ := world.GetTag(c.Tags(), settlingTag)
	return v
}
