package room

import (
	"regexp"

	"github.com/washer/curvytron/models"
)

// MaxPlayerNameLength caps player display names, in runes.
const MaxPlayerNameLength = 25

// colorFormat 颜色格式: #RRGGBB
var colorFormat = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// DefaultColors is the palette new players are assigned from.
var DefaultColors = []string{
	"#ff3c3c",
	"#3cff3c",
	"#3c3cff",
	"#ffd23c",
	"#3cffff",
	"#ff3cff",
	"#ff9a3c",
	"#9a3cff",
}

// ValidateColor reports whether a color passes format validation.
func ValidateColor(color string) bool {
	return colorFormat.MatchString(color)
}

// Player 房间内的参与者，与底层连接是两个概念
//
// Fields are guarded by the owning Room's mutex; mutate them through the
// Room's methods only.
type Player struct {
	SessionID string
	ID        int
	Name      string
	Color     string
	Ready     bool
}

// Serialize exposes the public view of the player. Call while holding the
// room lock, or on a snapshot.
func (p *Player) Serialize() models.PlayerSnapshot {
	return models.PlayerSnapshot{
		ID:    p.ID,
		Name:  p.Name,
		Color: p.Color,
		Ready: p.Ready,
	}
}
