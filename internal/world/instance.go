package world

// Instance is an isolated world partition. Entities and clients only see each
// other inside the same instance; identity is by pointer.
type Instance struct {
	id           string
	name         string
	viewDistance int32
}

func NewInstance(id, name string, viewDistance int32) *Instance {
	if name == "" {
		name = id
	}
	return &Instance{id: id, name: name, viewDistance: viewDistance}
}

func (i *Instance) ID() string          { return i.id }
func (i *Instance) Name() string        { return i.name }
func (i *Instance) ViewDistance() int32 { return i.viewDistance }
