// Package harness runs seeded generation suites and reports regressions.
package harness

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samdwyer/questforge/internal/gamedata"
	"github.com/samdwyer/questforge/internal/quest"
	"github.com/samdwyer/questforge/internal/rng"
	"github.com/samdwyer/questforge/internal/world"
)

// Scenario is a named quest request the suite generates repeatedly.
type Scenario struct {
	ID           string        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Request      quest.Request `json:"request" yaml:"request"`
	IsRandomized bool          `json:"is_randomized,omitempty" yaml:"is_randomized,omitempty"`
}

type scenarioFile struct {
	Scenarios []Scenario `json:"scenarios"`
}

var library = sync.OnceValue(func() []Scenario {
	return gamedata.MustLoad[scenarioFile]("scenarios.json").Scenarios
})

// ScenarioLibrary returns the fixed scenario set, one or more per quest
// type. The slice is a fresh copy on every call.
func ScenarioLibrary() []Scenario {
	base := library()
	out := make([]Scenario, len(base))
	for i, s := range base {
		out[i] = s.clone()
	}
	return out
}

// FindScenario looks a library scenario up by id.
func FindScenario(id string) (Scenario, bool) {
	for _, s := range library() {
		if s.ID == id {
			return s.clone(), true
		}
	}
	return Scenario{}, false
}

func (s Scenario) clone() Scenario {
	c := s
	c.Request.SpecialEvents = slices.Clone(s.Request.SpecialEvents)
	return c
}

// Extra events a randomized scenario may pick up.
var randomEvents = []quest.SpecialEvent{
	{EventType: "combat", Name: "Wandering patrol"},
	{EventType: "treasure", Name: "Forgotten stash"},
	{EventType: world.EventTrap, Name: "Collapsing floor"},
	{EventType: "lore", Name: "Cracked mural"},
}

// RandomizedScenarioBatch derives count perturbed scenarios from base using
// its own RNG seeded from seed, so the batch is identical for equal input.
func RandomizedScenarioBatch(base []Scenario, count int, seed string) []Scenario {
	if len(base) == 0 || count <= 0 {
		return []Scenario{}
	}
	r := rng.FromString(seed)
	out := make([]Scenario, 0, count)

	for i := 0; i < count; i++ {
		src, _ := rng.Pick(r, base)
		s := src.clone()
		s.ID = fmt.Sprintf("%s-rand-%d", src.ID, i+1)
		s.Name = src.Name + " (randomized)"
		s.IsRandomized = true
		s.Request.Seed = ""

		req := &s.Request
		req.Width = world.NormalizeSpec(world.GenerationSpec{Width: req.Width}).Width + r.IntRange(-8, 8)
		req.Height = world.NormalizeSpec(world.GenerationSpec{Height: req.Height}).Height + r.IntRange(-6, 6)
		req.Depth = max(1, req.Depth+r.IntRange(-2, 2))

		if r.Bool(0.25) {
			qt, _ := rng.Pick(r, world.QuestTypes)
			req.QuestType = string(qt)
		}
		if r.Bool(0.5) {
			ev, _ := rng.Pick(r, randomEvents)
			mandatory := r.Bool(0.5)
			ev.IsMandatory = &mandatory
			req.SpecialEvents = append(req.SpecialEvents, ev)
		}
		out = append(out, s)
	}
	return out
}
