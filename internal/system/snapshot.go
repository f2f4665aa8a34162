package system

import (
	"context"
	"time"

	coresys "github.com/whale2d/sim2d/internal/core/system"
	"github.com/whale2d/sim2d/internal/world"
	"go.uber.org/zap"
)

// SnapshotWriter stores one tick's body states. Implemented by
// *persist.SnapshotRepo.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, tick uint64, digest uint64, bodies []world.BodyState) error
}

// SnapshotSystem periodically writes every body's state and the world
// digest. Phase 6 (Persist).
type SnapshotSystem struct {
	ws        *world.State
	writer    SnapshotWriter
	log       *zap.Logger
	timeout   time.Duration
	tickCount int
	interval  int // snapshot every N ticks
	saved     bool
	lastTick  uint64
}

func NewSnapshotSystem(ws *world.State, writer SnapshotWriter, log *zap.Logger, intervalTicks int, timeout time.Duration) *SnapshotSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SnapshotSystem{
		ws:       ws,
		writer:   writer,
		log:      log,
		timeout:  timeout,
		interval: intervalTicks,
	}
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *SnapshotSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Save()
}

// Save writes a snapshot immediately. Called on shutdown so the final state
// is kept regardless of the interval. A tick already saved is skipped.
func (s *SnapshotSystem) Save() {
	tick := s.ws.Tick()
	if s.saved && s.lastTick == tick {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	bodies := s.ws.BodyStates()
	if err := s.writer.SaveSnapshot(ctx, tick, s.ws.Digest(), bodies); err != nil {
		s.log.Error("snapshot failed", zap.Uint64("tick", tick), zap.Error(err))
		return
	}
	s.saved, s.lastTick = true, tick
	s.log.Debug("snapshot saved", zap.Uint64("tick", tick), zap.Int("bodies", len(bodies)))
}
