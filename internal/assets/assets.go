package assets

import (
	"fmt"

	"github.com/google/uuid"
)

// Asset kinds. An asset is a reusable visual anchor (a character sheet, a
// location plate, a prop) that scenes reference by id.
const (
	TypeCharacter = "character"
	TypeLocation  = "location"
	TypeItem      = "item"
)

// Asset is a named reference image with a trigger word that can be woven into
// generation prompts.
type Asset struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TriggerWord string `json:"trigger_word,omitempty"`
	Image       string `json:"image,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

func (a *Asset) Clone() *Asset {
	c := *a
	return &c
}

// Resolver looks up assets by id. Scenes hold asset ids, not assets, so a
// dangling id after deletion resolves to nil and is skipped by callers.
type Resolver interface {
	Resolve(id string) *Asset
}

// Set is an ordered collection of assets. Order is creation order and is
// preserved across lookups so that prompt composition is deterministic.
type Set struct {
	items []*Asset
}

func NewSet() *Set {
	return &Set{}
}

func ValidType(t string) bool {
	return t == TypeCharacter || t == TypeLocation || t == TypeItem
}

// Add creates an asset and appends it to the set.
func (s *Set) Add(typ, name string) (*Asset, error) {
	if !ValidType(typ) {
		return nil, fmt.Errorf("unknown asset type %q", typ)
	}
	a := &Asset{
		ID:   uuid.NewString(),
		Type: typ,
		Name: name,
	}
	s.items = append(s.items, a)
	return a, nil
}

// Put inserts an existing asset, used when loading from storage.
func (s *Set) Put(a *Asset) {
	s.items = append(s.items, a)
}

func (s *Set) Resolve(id string) *Asset {
	for _, a := range s.items {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *Set) Remove(id string) bool {
	for i, a := range s.items {
		if a.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// All returns the assets in creation order. The slice is a fresh copy; the
// assets themselves are shared.
func (s *Set) All() []*Asset {
	out := make([]*Asset, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Set) Len() int {
	return len(s.items)
}

// SetAspectRatio cascades a project-level ratio change to every asset so that
// regenerated reference images stay consistent with the scenes.
func (s *Set) SetAspectRatio(ratio string) {
	for _, a := range s.items {
		a.AspectRatio = ratio
	}
}

// Clone deep-copies the set for read-only snapshots.
func (s *Set) Clone() *Set {
	out := &Set{items: make([]*Asset, len(s.items))}
	for i, a := range s.items {
		out.items[i] = a.Clone()
	}
	return out
}
