package world

// Host signals. They are published synchronously on the event bus in the
// order the host observes them.

// ClientConfiguring is published when a client starts joining the server.
type ClientConfiguring struct {
	Client Client
}

// ClientSpawned is published when a client is placed into an instance,
// on first join and on every instance change.
type ClientSpawned struct {
	Client   Client
	Instance *Instance
}

// ClientWorldConfirm is published when the client acknowledges a position
// (C_TELEPORT_CONFIRM), i.e. it has fully arrived in its instance.
type ClientWorldConfirm struct {
	Client     Client
	TeleportID int32
}

// EntityDespawned is published once an entity has been removed from the world.
type EntityDespawned struct {
	Entity Entity
}

// EntityAttacked is published when Attacker hits Target. Attacker is a
// Client for player attacks and an Entity otherwise.
type EntityAttacked struct {
	Attacker any
	Target   Entity
}

// Hand identifies which hand produced an interaction.
type Hand uint8

const (
	HandMain Hand = iota
	HandOff
)

func (h Hand) String() string {
	if h == HandOff {
		return "off"
	}
	return "main"
}

// EntityInteracted is published when a client uses an entity. Clients send
// one interaction per hand.
type EntityInteracted struct {
	Client Client
	Target Entity
	Hand   Hand
}

// ClientLeft is emitted (deferred) after a client was removed from the world.
type ClientLeft struct {
	ClientID uint64
	Name     string
}
