package game

import (
	"time"

	"github.com/washer/curvytron/logger"
	"github.com/washer/curvytron/network"
	"github.com/washer/curvytron/state"
)

// warmupState 热身倒计时，结束后进入对局
type warmupState struct {
	state.Base
	game      *Game
	ticks     int
	announced bool
}

func newWarmupState(g *Game) *warmupState {
	return &warmupState{
		Base: state.Base{StateName: "warmup"},
		game: g,
	}
}

func (s *warmupState) OnEnter() {
	s.ticks = int(s.game.cfg.Warmup / (100 * time.Millisecond))
}

func (s *warmupState) OnUpdate() {
	// The countdown notice goes out on the first tick, not on entry: the
	// machine enters warmup while the game is being built, before the
	// room's connections have been attached.
	if !s.announced {
		s.announced = true
		s.game.Broadcast(network.NewEvent(network.EventGameWarmup, map[string]interface{}{
			"room":     s.game.room.Name,
			"duration": s.game.cfg.Warmup.Seconds(),
		}))
	}

	s.ticks--
	if s.ticks <= 0 {
		if err := s.game.machine.ChangeState(newPlayingState(s.game)); err != nil {
			logger.Log.Errorf("Game %s failed to leave warmup: %v", s.game.ID(), err)
		}
	}
}

// playingState 对局进行中: 定时投放奖励, 时间耗尽结束
type playingState struct {
	state.Base
	game       *Game
	remaining  time.Duration
	sinceSpawn time.Duration
}

func newPlayingState(g *Game) *playingState {
	return &playingState{
		Base: state.Base{StateName: "playing"},
		game: g,
	}
}

func (s *playingState) OnEnter() {
	logger.Log.Infof("房间 %s 对局开始, 时长 %v", s.game.room.Name, s.game.cfg.Duration)
	s.remaining = s.game.cfg.Duration
	s.sinceSpawn = 0
}

func (s *playingState) OnExit() {
	logger.Log.Infof("房间 %s 对局结束", s.game.room.Name)
}

func (s *playingState) OnUpdate() {
	const tick = 100 * time.Millisecond

	s.remaining -= tick
	if s.remaining <= 0 {
		s.game.End()
		return
	}

	s.sinceSpawn += tick
	if s.sinceSpawn >= s.game.cfg.BonusInterval {
		s.sinceSpawn = 0
		s.game.SpawnBonus()
	}
}
