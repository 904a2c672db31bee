package game

import "sync"

// Default avatar attributes.
const (
	defaultSpeed  = 1.0
	defaultRadius = 0.6
)

// Avatar is a player's presence inside a match, and the target bonus
// effects mutate. Movement integration lives client-side; the server only
// tracks the effect-relevant state.
type Avatar struct {
	PlayerID int
	Name     string

	speed      float64
	radius     float64
	invincible bool
	score      int
	mutex      sync.RWMutex
}

func NewAvatar(playerID int, name string) *Avatar {
	return &Avatar{
		PlayerID: playerID,
		Name:     name,
		speed:    defaultSpeed,
		radius:   defaultRadius,
	}
}

func (a *Avatar) Speed() float64 {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.speed
}

func (a *Avatar) SetSpeed(speed float64) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.speed = speed
}

func (a *Avatar) Radius() float64 {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.radius
}

func (a *Avatar) SetRadius(radius float64) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.radius = radius
}

func (a *Avatar) SetInvincible(on bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.invincible = on
}

func (a *Avatar) Invincible() bool {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.invincible
}

func (a *Avatar) AddScore(points int) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.score += points
}

func (a *Avatar) Score() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.score
}
