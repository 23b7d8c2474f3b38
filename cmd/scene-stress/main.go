package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"reflect"
	"runtime"
	"time"

	"github.com/pkg/profile"

	"github.com/plus3/scenekit/scene"
	"github.com/plus3/scenekit/scene/components"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The number of entities to create.")
	scriptsPerEntity := flag.Int("scripts", 2, "Script instances attached to each entity.")
	fixedStep := flag.Float64("fixed-step", scene.DefaultFixedStep, "Fixed update step in seconds.")
	profileMode := flag.String("profile", "", "Write a profile: cpu or mem.")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(".")).Stop()
	case "":
	default:
		log.Fatalf("unknown profile mode %q", *profileMode)
	}

	log.Println("Starting scene stress test...")

	// 1. Registries, manager, scene, scheduler.
	builtins := scene.NewComponentRegistry()
	components.Register(builtins)
	manager := scene.NewSceneManager(scene.NewTypeResolver(builtins, nil))

	world := manager.CreateScene("stress")
	scripts := scene.NewScriptSystem(100, stressScripts())
	scripts.SetFixedStep(*fixedStep)
	world.AddSystem(scripts)
	world.AddSystem(newDriftSystem(10))

	// 2. Populate.
	log.Printf("Populating scene with %d entities...\n", *entityCount)
	scriptNames := []string{"Jitter", "Spin", "Pulse"}
	for i := 0; i < *entityCount; i++ {
		e := world.CreateEntity(fmt.Sprintf("stress-%d", i))
		t := components.NewTransform()
		t.Position = components.Vec3{X: rand.Float64() * 100, Y: rand.Float64() * 100}
		e.AddComponent(t)
		if i%2 == 0 {
			e.AddComponent(components.NewPhysics(1.0, false))
		}
		for j := 0; j < *scriptsPerEntity; j++ {
			scripts.CreateScript(scriptNames[(i+j)%len(scriptNames)], e)
		}
	}
	log.Println("Population complete.")

	manager.SetActiveScene(world.ID())
	scripts.StartScripts()

	// 3. Run the frame loop.
	report := &Report{
		Duration: *duration,
		Entities: *entityCount,
		Scripts:  *entityCount * *scriptsPerEntity,
		Systems:  len(world.Systems()),
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			manager.Update(float64(deltaTime) / float64(time.Second))
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}

// stressScripts is the behavior source for the synthetic load.
func stressScripts() scene.ScriptSource {
	return scene.ScriptMap{
		"Jitter": func() scene.Script { return &jitterScript{} },
		"Spin":   func() scene.Script { return &spinScript{} },
		"Pulse":  func() scene.Script { return &pulseScript{} },
	}
}

type jitterScript struct {
	scene.BaseScript
	transform *components.Transform
}

func (j *jitterScript) Start() {
	j.transform, _ = scene.ComponentOf[*components.Transform](j.Entity())
}

func (j *jitterScript) Update(dt float64) {
	if j.transform != nil {
		j.transform.Translate((rand.Float64()-0.5)*dt, (rand.Float64()-0.5)*dt, 0)
	}
}

type spinScript struct {
	scene.BaseScript
	transform *components.Transform
}

func (s *spinScript) Start() {
	s.transform, _ = scene.ComponentOf[*components.Transform](s.Entity())
}

func (s *spinScript) FixedUpdate(dt float64) {
	if s.transform != nil {
		s.transform.Rotate(0, 0, 90*dt)
	}
}

type pulseScript struct {
	scene.BaseScript
	age float64
}

func (p *pulseScript) Update(dt float64) { p.age += dt }

func (p *pulseScript) LateUpdate(dt float64) {
	if p.age > 1 {
		p.age = 0
	}
}

var physicsType = reflect.TypeFor[*components.Physics]()

// driftSystem integrates Physics velocity into Transform positions over the
// scene's dense pools, standing in for the physics collaborator.
type driftSystem struct {
	scene.BaseSystem
}

func newDriftSystem(priority int) *driftSystem {
	return &driftSystem{BaseSystem: scene.NewBaseSystem(priority)}
}

func (d *driftSystem) Update(dt float64) {
	sc := d.Scene()
	if sc == nil {
		return
	}
	for e, c := range sc.ComponentsOf(physicsType) {
		body := c.(*components.Physics)
		if body.Static || !body.Enabled() {
			continue
		}
		if t, ok := scene.ComponentOf[*components.Transform](e); ok {
			t.Position = t.Position.Add(body.Velocity.Scale(dt))
		}
	}
}
