package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/npcsync/server/internal/world"
)

// InstanceDef declares one world instance.
type InstanceDef struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	ViewDistance int32  `yaml:"view_distance"` // 0 = server default
}

// SkinDef is a signed skin payload.
type SkinDef struct {
	Textures  string `yaml:"textures"`
	Signature string `yaml:"signature"`
}

// NpcDef declares one NPC to create and spawn at startup.
type NpcDef struct {
	Name       *string  `yaml:"name"` // nil = use the assigned id
	Kind       string   `yaml:"kind"` // "" = humanoid
	Instance   string   `yaml:"instance"`
	X          int32    `yaml:"x"`
	Y          int32    `yaml:"y"`
	Skin       *SkinDef `yaml:"skin,omitempty"`
	Script     string   `yaml:"script,omitempty"`      // Lua file under the script dir
	OnInteract string   `yaml:"on_interact,omitempty"` // Lua function name
	OnAttack   string   `yaml:"on_attack,omitempty"`   // Lua function name

	kind world.Kind
}

// ParsedKind is the validated kind; only meaningful after Validate.
func (d *NpcDef) ParsedKind() world.Kind { return d.kind }

// SpawnList is the startup world description.
type SpawnList struct {
	Instances []InstanceDef `yaml:"instances"`
	Npcs      []NpcDef      `yaml:"npcs"`
}

// LoadSpawnList reads and validates a spawn list file.
func LoadSpawnList(path string) (*SpawnList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn list: %w", err)
	}
	return ParseSpawnList(data)
}

func ParseSpawnList(data []byte) (*SpawnList, error) {
	var l SpawnList
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse spawn list: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("spawn list: %w", err)
	}
	return &l, nil
}

// Validate checks instance references and kinds. All problems are reported.
func (l *SpawnList) Validate() error {
	var errs []error
	ids := make(map[string]bool, len(l.Instances))
	for i, inst := range l.Instances {
		if inst.ID == "" {
			errs = append(errs, fmt.Errorf("instances[%d]: id is required", i))
			continue
		}
		if ids[inst.ID] {
			errs = append(errs, fmt.Errorf("instances[%d]: duplicate id %q", i, inst.ID))
		}
		ids[inst.ID] = true
	}
	for i := range l.Npcs {
		d := &l.Npcs[i]
		k, err := world.ParseKind(d.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("npcs[%d]: %w", i, err))
		}
		d.kind = k
		if !ids[d.Instance] {
			errs = append(errs, fmt.Errorf("npcs[%d]: unknown instance %q", i, d.Instance))
		}
		if (d.OnInteract != "" || d.OnAttack != "") && d.Script == "" {
			errs = append(errs, fmt.Errorf("npcs[%d]: hooks need a script", i))
		}
	}
	return errors.Join(errs...)
}

// Count returns the number of NPC definitions.
func (l *SpawnList) Count() int { return len(l.Npcs) }
