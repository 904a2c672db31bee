package bonus

import (
	"math"
	"math/rand"
	"testing"
)

// fakeActor records the mutations an effect performs.
type fakeActor struct {
	speed      float64
	radius     float64
	invincible bool
}

func newFakeActor() *fakeActor {
	return &fakeActor{speed: 1.0, radius: 0.6}
}

func (a *fakeActor) Speed() float64            { return a.speed }
func (a *fakeActor) SetSpeed(speed float64)    { a.speed = speed }
func (a *fakeActor) Radius() float64           { return a.radius }
func (a *fakeActor) SetRadius(radius float64)  { a.radius = radius }
func (a *fakeActor) SetInvincible(on bool)     { a.invincible = on }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBonus_ApplyMagnitudes(t *testing.T) {
	cases := []struct {
		kind      Kind
		magnitude float64
		check     func(a *fakeActor) bool
	}{
		{SpeedUp, 1.5, func(a *fakeActor) bool { return almostEqual(a.speed, 1.5) }},
		{SlowDown, 0.5, func(a *fakeActor) bool { return almostEqual(a.speed, 0.5) }},
		{Grow, 2, func(a *fakeActor) bool { return almostEqual(a.radius, 1.2) }},
		{Shrink, 0.5, func(a *fakeActor) bool { return almostEqual(a.radius, 0.3) }},
		{Invincible, 1, func(a *fakeActor) bool { return a.invincible }},
	}

	for _, tc := range cases {
		b := New(tc.kind, Position{X: 10, Y: 20})
		actor := newFakeActor()

		got := b.ApplyTo(actor)
		if !almostEqual(got, tc.magnitude) {
			t.Errorf("%s: ApplyTo = %v, want %v", b.Type(), got, tc.magnitude)
		}
		if !tc.check(actor) {
			t.Errorf("%s: actor state after apply = %+v", b.Type(), actor)
		}
	}
}

func TestBonus_ApplyAtMostOnce(t *testing.T) {
	b := New(SpeedUp, Position{})
	actor := newFakeActor()

	if got := b.ApplyTo(actor); got == 0 {
		t.Fatal("First apply must report the magnitude")
	}
	if got := b.ApplyTo(actor); got != 0 {
		t.Errorf("Second apply = %v, want 0", got)
	}
	if !almostEqual(actor.speed, 1.5) {
		t.Errorf("Second apply must not stack, speed = %v", actor.speed)
	}
}

func TestBonus_ClearReverts(t *testing.T) {
	for _, kind := range AllKinds {
		b := New(kind, Position{})
		actor := newFakeActor()

		b.ApplyTo(actor)
		b.Clear()

		if !almostEqual(actor.speed, 1.0) || !almostEqual(actor.radius, 0.6) || actor.invincible {
			t.Errorf("%s: actor not restored after clear: %+v", b.Type(), actor)
		}
	}
}

func TestBonus_ClearWithoutApplyIsNoop(t *testing.T) {
	b := New(Grow, Position{})
	b.Clear() // must not panic on a nil target
}

func TestBonus_ClearRearms(t *testing.T) {
	b := New(SpeedUp, Position{})
	actor := newFakeActor()

	b.ApplyTo(actor)
	b.Clear()

	if got := b.ApplyTo(actor); !almostEqual(got, 1.5) {
		t.Errorf("Apply after clear = %v, want 1.5", got)
	}
}

func TestBonus_AffectTags(t *testing.T) {
	expected := map[Kind]string{
		SpeedUp:    AffectSelf,
		SlowDown:   AffectOthers,
		Grow:       AffectOthers,
		Shrink:     AffectSelf,
		Invincible: AffectSelf,
	}
	for kind, affect := range expected {
		b := New(kind, Position{})
		if b.Affect() != affect {
			t.Errorf("%s: affect = %s, want %s", b.Type(), b.Affect(), affect)
		}
	}
}

func TestBonus_Serialize(t *testing.T) {
	b := New(SlowDown, Position{X: 3, Y: 4})
	b.SetID(7)

	snapshot := b.Serialize()
	if snapshot.ID != 7 {
		t.Errorf("ID = %d, want 7", snapshot.ID)
	}
	if snapshot.Type != "slow-down" {
		t.Errorf("Type = %s, want slow-down", snapshot.Type)
	}
	if snapshot.Affect != AffectOthers {
		t.Errorf("Affect = %s, want %s", snapshot.Affect, AffectOthers)
	}
	if snapshot.Position != [2]float64{3, 4} {
		t.Errorf("Position = %v", snapshot.Position)
	}
	if !almostEqual(snapshot.Radius, b.Radius()) {
		t.Errorf("Radius = %v, want %v", snapshot.Radius, b.Radius())
	}
}

func TestRandomKind(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := make(map[Kind]bool)
	for i := 0; i < 200; i++ {
		kind := RandomKind(rng)
		seen[kind] = true
		if _, ok := kinds[kind]; !ok {
			t.Fatalf("RandomKind returned unknown kind %d", kind)
		}
	}
	if len(seen) != len(AllKinds) {
		t.Errorf("200 draws hit %d of %d kinds", len(seen), len(AllKinds))
	}
}
