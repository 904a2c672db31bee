// bonus/bonus.go
package bonus

import (
	"math/rand"
	"sync"
	"time"

	"github.com/washer/curvytron/models"
)

// Actor is the narrow mutation surface a bonus effect works against. The
// match engine owns the concrete type.
type Actor interface {
	Speed() float64
	SetSpeed(speed float64)
	Radius() float64
	SetRadius(radius float64)
	SetInvincible(on bool)
}

// Affected-target tags.
const (
	AffectSelf   = "self"
	AffectOthers = "others"
)

// Kind is the fixed enumeration of bonus variants. Each kind carries its
// own constant data plus behavior, selected by tag.
type Kind int

const (
	SpeedUp Kind = iota
	SlowDown
	Grow
	Shrink
	Invincible
)

// kindSpec 每种奖励的常量数据与效果
type kindSpec struct {
	tag      string
	affect   string
	radius   float64
	duration time.Duration
	apply    func(Actor) float64
	revert   func(Actor)
}

var kinds = map[Kind]kindSpec{
	SpeedUp: {
		tag:      "speed-up",
		affect:   AffectSelf,
		radius:   2.4,
		duration: 5 * time.Second,
		apply: func(a Actor) float64 {
			a.SetSpeed(a.Speed() * 1.5)
			return 1.5
		},
		revert: func(a Actor) { a.SetSpeed(a.Speed() / 1.5) },
	},
	SlowDown: {
		tag:      "slow-down",
		affect:   AffectOthers,
		radius:   2.4,
		duration: 5 * time.Second,
		apply: func(a Actor) float64 {
			a.SetSpeed(a.Speed() * 0.5)
			return 0.5
		},
		revert: func(a Actor) { a.SetSpeed(a.Speed() / 0.5) },
	},
	Grow: {
		tag:      "grow",
		affect:   AffectOthers,
		radius:   2.4,
		duration: 7 * time.Second,
		apply: func(a Actor) float64 {
			a.SetRadius(a.Radius() * 2)
			return 2
		},
		revert: func(a Actor) { a.SetRadius(a.Radius() / 2) },
	},
	Shrink: {
		tag:      "shrink",
		affect:   AffectSelf,
		radius:   2.4,
		duration: 7 * time.Second,
		apply: func(a Actor) float64 {
			a.SetRadius(a.Radius() * 0.5)
			return 0.5
		},
		revert: func(a Actor) { a.SetRadius(a.Radius() / 0.5) },
	},
	Invincible: {
		tag:      "invincible",
		affect:   AffectSelf,
		radius:   2.4,
		duration: 3 * time.Second,
		apply: func(a Actor) float64 {
			a.SetInvincible(true)
			return 1
		},
		revert: func(a Actor) { a.SetInvincible(false) },
	},
}

// AllKinds lists every variant, for spawn selection.
var AllKinds = []Kind{SpeedUp, SlowDown, Grow, Shrink, Invincible}

// RandomKind picks a variant for a spawn.
func RandomKind(rng *rand.Rand) Kind {
	return AllKinds[rng.Intn(len(AllKinds))]
}

// Position 场上坐标
type Position struct {
	X float64
	Y float64
}

// Bonus is a placeable pickup effect: pure data plus behavior, invoked by
// the match loop. It carries no reference to the match. The instance is
// immutable except for the assigned id and the applied bookkeeping.
//
// ApplyTo applies at most once per instance: the first call returns the
// effect magnitude, every later call returns 0. Clear reverts the applied
// effect and re-arms the instance.
type Bonus struct {
	kind     Kind
	position Position

	id      int // assigned by the match when placed, 0 until then
	applied bool
	target  Actor
	mutex   sync.Mutex
}

func New(kind Kind, position Position) *Bonus {
	return &Bonus{kind: kind, position: position}
}

func (b *Bonus) SetID(id int) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.id = id
}

func (b *Bonus) ID() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.id
}

func (b *Bonus) Kind() Kind              { return b.kind }
func (b *Bonus) Type() string            { return kinds[b.kind].tag }
func (b *Bonus) Affect() string          { return kinds[b.kind].affect }
func (b *Bonus) Radius() float64         { return kinds[b.kind].radius }
func (b *Bonus) Duration() time.Duration { return kinds[b.kind].duration }
func (b *Bonus) Position() Position      { return b.position }

// ApplyTo mutates the receiving actor per the bonus kind and returns the
// effect magnitude, or 0 when the bonus has already been applied.
func (b *Bonus) ApplyTo(actor Actor) float64 {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.applied {
		return 0
	}
	b.applied = true
	b.target = actor
	return kinds[b.kind].apply(actor)
}

// Clear reverts the effect on the actor it was applied to and resets the
// applied state.
func (b *Bonus) Clear() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if !b.applied {
		return
	}
	kinds[b.kind].revert(b.target)
	b.applied = false
	b.target = nil
}

// Serialize exposes identity, type tag, radius, position and target scope.
// Internal apply state never leaves the package.
func (b *Bonus) Serialize() models.BonusSnapshot {
	b.mutex.Lock()
	id := b.id
	b.mutex.Unlock()

	spec := kinds[b.kind]
	return models.BonusSnapshot{
		ID:       id,
		Type:     spec.tag,
		Radius:   spec.radius,
		Position: [2]float64{b.position.X, b.position.Y},
		Affect:   spec.affect,
	}
}
