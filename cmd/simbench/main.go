// simbench runs a headless rain of bodies onto a ground plate and reports
// tick throughput. With -profile it writes a pprof file to the current
// directory:
//
//	go build ./cmd/simbench
//	./simbench -bodies 500 -ticks 2000 -profile cpu
//	go tool pprof -http=":8000" ./simbench cpu.pprof
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/config"
	coresys "github.com/whale2d/sim2d/internal/core/system"
	"github.com/whale2d/sim2d/internal/core/vmath"
	"github.com/whale2d/sim2d/internal/system"
	"github.com/whale2d/sim2d/internal/world"
	"go.uber.org/zap"
)

func main() {
	bodies := flag.Int("bodies", 200, "number of falling bodies")
	ticks := flag.Int("ticks", 1000, "ticks to simulate")
	resolution := flag.String("resolution", config.ResolveAll, "resolution policy: all or last")
	mode := flag.String("profile", "", "cpu, mem or empty")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	switch *mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	cfg := config.Defaults()
	cfg.Physics.Resolution = *resolution
	cfg.Display.Mode = "headless"

	ws, runner := build(cfg, *bodies)
	start := time.Now()
	for i := 0; i < *ticks; i++ {
		runner.Tick(cfg.Simulation.TickRate)
	}
	elapsed := time.Since(start)

	grounded := 0
	for _, b := range ws.BodyStates() {
		if b.Grounded {
			grounded++
		}
	}
	log.Info("bench done",
		zap.Int("bodies", *bodies),
		zap.Int("ticks", *ticks),
		zap.String("resolution", *resolution),
		zap.Duration("elapsed", elapsed),
		zap.Duration("per_tick", elapsed/time.Duration(max(*ticks, 1))),
		zap.Int("grounded", grounded),
		zap.Uint64("digest", ws.Digest()))
}

// build lays out a plate and a grid of alternating circles and boxes
// above it.
func build(cfg *config.Config, n int) (*world.State, *coresys.Runner) {
	ws := world.NewState(nil)

	const cols = 20
	plate := component.Rect(float64(cols)*2+4, 2)
	ws.Spawn(world.EntitySpec{Name: "plate", Position: vmath.V(0, -1), Collider: &plate, Body: component.NewRigidBody(0)})

	circle := component.Circle(0.45)
	box := component.Rect(0.9, 0.9)
	for i := 0; i < n; i++ {
		shape := circle
		if i%2 == 1 {
			shape = box
		}
		x := float64(i%cols)*2 - float64(cols) + 1
		y := 2 + float64(i/cols)*1.5
		ws.Spawn(world.EntitySpec{
			Position:   vmath.V(x, y),
			Collider:   &shape,
			Body:       component.NewRigidBody(1),
			Collisions: true,
		})
	}

	runner := coresys.NewRunner()
	system.RegisterAll(runner, ws, cfg, system.Deps{})
	return ws, runner
}
