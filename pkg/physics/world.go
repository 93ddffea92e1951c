package physics

import (
	"math"
	"sort"
	"time"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game"
	"github.com/cbodonnell/watermelon/pkg/game/constants"
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/kinematic"
	"github.com/cbodonnell/watermelon/pkg/log"
	"github.com/cbodonnell/watermelon/pkg/queue"
	"github.com/solarlune/resolv"
)

const (
	CollisionSpaceTagLevel        = "level"
	CollisionSpaceTagFruit        = "fruit"
	CollisionSpaceTagControllable = "controllable"
)

const (
	// contactSlop is the gap under which two shapes count as touching
	contactSlop = 0.5
	// broadphasePadding grows every body's collision object so that touching
	// shapes always share a cell
	broadphasePadding = contactSlop + 1
	solverIterations  = 4
	maxSubsteps       = 64
	restitution       = 0.2
	friction          = 0.05
	linearDamping     = 0.1
	fruitDensity      = 0.001
)

// Body is a snapshot of a simulated fruit.
type Body struct {
	Entity   types.EntityHandle
	Tier     fruit.Tier
	Kind     types.BodyKind
	Params   types.BodyParams
	Position kinematic.Vector
	Velocity kinematic.Vector
	Radius   float64
}

// Rect is a static level piece. X and Y are its lower left corner.
type Rect struct {
	Entity types.EntityHandle
	X      float64
	Y      float64
	W      float64
	H      float64
}

type body struct {
	Body
	object *resolv.Object
}

func (b *body) mass() float64 {
	return fruitDensity*math.Pi*b.Radius*b.Radius + b.Params.Mass
}

func (b *body) invMass() float64 {
	if b.Kind != types.BodyKindDynamic {
		return 0
	}
	return 1 / b.mass()
}

// sync moves the collision object to the body's position.
func (b *body) sync() {
	b.object.Position.X = b.Position.X - b.Radius - broadphasePadding
	b.object.Position.Y = b.Position.Y - b.Radius - broadphasePadding
	b.object.Update()
}

type pair struct {
	a types.EntityHandle
	b types.EntityHandle
}

func newPair(a, b types.EntityHandle) pair {
	if b < a {
		a, b = b, a
	}
	return pair{a: a, b: b}
}

func sortPairs(pairs []pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})
}

// World simulates circular fruit bodies in a walled board on top of a resolv
// collision space. Y grows upwards. It is not safe for concurrent use.
type World struct {
	space                  *resolv.Space
	width                  float64
	height                 float64
	gravity                float64
	next                   types.EntityHandle
	bodies                 map[types.EntityHandle]*body
	objects                map[*resolv.Object]types.EntityHandle
	level                  []Rect
	contacts               map[pair]struct{}
	collisionEventQueue    queue.Queue[types.CollisionEvent]
	contactForceEventQueue queue.Queue[types.ContactForceEvent]
	logger                 *log.Logger
}

var _ game.World = &World{}

// NewWorldOptions contains options for creating a new World.
type NewWorldOptions struct {
	// Width and Height are the board size. Zero values use the constants package.
	Width  float64
	Height float64
	// WallThickness is the thickness of the ground and side walls.
	WallThickness float64
	// CellSize is the cell size of the collision space.
	CellSize int
	// CollisionEventQueue receives Started and Stopped events. Optional.
	CollisionEventQueue queue.Queue[types.CollisionEvent]
	// ContactForceEventQueue receives contact forces above a body's threshold. Optional.
	ContactForceEventQueue queue.Queue[types.ContactForceEvent]
}

func NewWorld(opts NewWorldOptions) *World {
	if opts.Width <= 0 {
		opts.Width = constants.BoardWidth
	}
	if opts.Height <= 0 {
		opts.Height = constants.BoardHeight
	}
	if opts.WallThickness <= 0 {
		opts.WallThickness = constants.WallThickness
	}
	if opts.CellSize <= 0 {
		opts.CellSize = constants.CellSize
	}

	w := &World{
		space:                  resolv.NewSpace(int(opts.Width), int(opts.Height), opts.CellSize, opts.CellSize),
		width:                  opts.Width,
		height:                 opts.Height,
		gravity:                kinematic.Gravity * constants.GravityMultiplier,
		bodies:                 make(map[types.EntityHandle]*body),
		objects:                make(map[*resolv.Object]types.EntityHandle),
		contacts:               make(map[pair]struct{}),
		collisionEventQueue:    opts.CollisionEventQueue,
		contactForceEventQueue: opts.ContactForceEventQueue,
		logger:                 log.WithField("component", "physics"),
	}

	t := opts.WallThickness
	w.addLevel(0, 0, opts.Width, t)
	w.addLevel(0, t, t, opts.Height-t)
	w.addLevel(opts.Width-t, t, t, opts.Height-t)
	return w
}

func (w *World) addLevel(x, y, width, height float64) {
	w.next++
	object := resolv.NewObject(x, y, width, height, CollisionSpaceTagLevel)
	w.space.Add(object)
	w.objects[object] = w.next
	w.level = append(w.level, Rect{Entity: w.next, X: x, Y: y, W: width, H: height})
}

func (w *World) Width() float64 {
	return w.width
}

func (w *World) Height() float64 {
	return w.height
}

// Level returns the ground followed by the left and right walls.
func (w *World) Level() []Rect {
	level := make([]Rect, len(w.level))
	copy(level, w.level)
	return level
}

// Bodies returns a snapshot of every body ordered by handle.
func (w *World) Bodies() []Body {
	ordered := w.sortedBodies()
	snapshot := make([]Body, len(ordered))
	for i, b := range ordered {
		snapshot[i] = b.Body
	}
	return snapshot
}

// Body returns a snapshot of one body.
func (w *World) Body(entity types.EntityHandle) (Body, bool) {
	b, ok := w.bodies[entity]
	if !ok {
		return Body{}, false
	}
	return b.Body, true
}

func (w *World) Position(entity types.EntityHandle) (kinematic.Vector, bool) {
	b, ok := w.bodies[entity]
	if !ok {
		return kinematic.Vector{}, false
	}
	return b.Position, true
}

func (w *World) SpawnBody(tier fruit.Tier, position kinematic.Vector, kind types.BodyKind, params types.BodyParams) types.EntityHandle {
	if !tier.Valid() {
		w.logger.Warn("Cannot spawn body with invalid tier %d", uint8(tier))
		return types.InvalidEntity
	}

	tag := CollisionSpaceTagFruit
	if kind == types.BodyKindControllable {
		tag = CollisionSpaceTagControllable
	}

	radius := fruit.Radius(tier)
	size := 2 * (radius + broadphasePadding)
	w.next++
	b := &body{
		Body: Body{
			Entity:   w.next,
			Tier:     tier,
			Kind:     kind,
			Params:   params,
			Position: position,
			Radius:   radius,
		},
		object: resolv.NewObject(0, 0, size, size, tag),
	}
	w.space.Add(b.object)
	b.sync()
	w.bodies[b.Entity] = b
	w.objects[b.object] = b.Entity

	w.logger.Trace("Spawned %s %s as entity %d at (%0.1f, %0.1f)", kind, tier, b.Entity, position.X, position.Y)
	return b.Entity
}

// Despawn removes a body and reports the end of its contacts.
func (w *World) Despawn(entity types.EntityHandle) {
	b, ok := w.bodies[entity]
	if !ok {
		return
	}
	w.space.Remove(b.object)
	delete(w.objects, b.object)
	delete(w.bodies, entity)

	var stopped []pair
	for p := range w.contacts {
		if p.a == entity || p.b == entity {
			stopped = append(stopped, p)
		}
	}
	sortPairs(stopped)
	for _, p := range stopped {
		delete(w.contacts, p)
		w.enqueueCollision(p, types.CollisionStopped)
	}
}

func (w *World) SetPosition(entity types.EntityHandle, position kinematic.Vector) {
	b, ok := w.bodies[entity]
	if !ok {
		return
	}
	b.Position = position
	b.sync()
}

// Step advances the simulation by dt. Fast bodies with CCD enabled split the
// step into sub-steps no longer than half their radius.
func (w *World) Step(dt time.Duration) {
	ordered := w.sortedBodies()
	seconds := dt.Seconds()
	if seconds > 0 {
		substeps := w.substeps(ordered, seconds)
		h := seconds / float64(substeps)
		impulses := make(map[pair]float64)
		for i := 0; i < substeps; i++ {
			for _, b := range ordered {
				w.integrate(b, h)
			}
			for iteration := 0; iteration < solverIterations; iteration++ {
				for _, b := range ordered {
					w.solveLevel(b, impulses)
				}
				for _, b := range ordered {
					w.solveFruits(b, impulses)
				}
			}
		}
		w.reportContactForces(impulses, seconds)
	}
	w.updateContacts(ordered)
}

func (w *World) sortedBodies() []*body {
	ordered := make([]*body, 0, len(w.bodies))
	for _, b := range w.bodies {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Entity < ordered[j].Entity })
	return ordered
}

func (w *World) substeps(ordered []*body, seconds float64) int {
	substeps := 1
	for _, b := range ordered {
		if b.Kind != types.BodyKindDynamic || !b.Params.CCD {
			continue
		}
		g := math.Abs(w.gravity * b.Params.GravityScale)
		travel := b.Velocity.Length()*seconds + 0.5*g*seconds*seconds
		if n := int(math.Ceil(travel / (0.5 * b.Radius))); n > substeps {
			substeps = n
		}
	}
	if substeps > maxSubsteps {
		substeps = maxSubsteps
	}
	return substeps
}

func (w *World) integrate(b *body, h float64) {
	if b.Kind != types.BodyKindDynamic {
		return
	}
	g := w.gravity * b.Params.GravityScale
	b.Position.X += b.Velocity.X * h
	b.Position.Y += kinematic.Displacement(b.Velocity.Y, h, g)
	b.Velocity.Y = kinematic.FinalVelocity(b.Velocity.Y, h, g)
	b.Velocity = b.Velocity.Scale(1 - linearDamping*h)
	b.sync()
}

// solveLevel pushes a dynamic body out of the ground and walls.
func (w *World) solveLevel(b *body, impulses map[pair]float64) {
	if b.Kind != types.BodyKindDynamic {
		return
	}
	collision := b.object.Check(0, 0, CollisionSpaceTagLevel)
	if collision == nil {
		return
	}
	for _, object := range collision.Objects {
		normal, depth, ok := circleRect(b.Position, b.Radius, rectOf(object))
		if !ok {
			continue
		}
		b.Position = b.Position.Add(normal.Scale(depth))
		if vn := b.Velocity.Dot(normal); vn < 0 {
			b.Velocity = b.Velocity.Sub(normal.Scale((1 + restitution) * vn))
			tangent := kinematic.Vector{X: -normal.Y, Y: normal.X}
			b.Velocity = b.Velocity.Sub(tangent.Scale(b.Velocity.Dot(tangent) * friction))
			impulses[newPair(b.Entity, w.objects[object])] += -(1 + restitution) * vn * b.mass()
		}
		b.sync()
	}
}

// solveFruits separates a body from the fruits it overlaps. Each pair is
// solved once, from its lower handle.
func (w *World) solveFruits(b *body, impulses map[pair]float64) {
	if b.Kind == types.BodyKindControllable {
		return
	}
	collision := b.object.Check(0, 0, CollisionSpaceTagFruit)
	if collision == nil {
		return
	}
	for _, object := range collision.Objects {
		other, ok := w.bodies[w.objects[object]]
		if !ok || other.Entity <= b.Entity {
			continue
		}
		delta := other.Position.Sub(b.Position)
		dist := delta.Length()
		overlap := b.Radius + other.Radius - dist
		if overlap <= 0 {
			continue
		}
		invA, invB := b.invMass(), other.invMass()
		total := invA + invB
		if total == 0 {
			continue
		}
		normal := kinematic.Vector{Y: 1}
		if dist > 0 {
			normal = delta.Scale(1 / dist)
		}
		b.Position = b.Position.Sub(normal.Scale(overlap * invA / total))
		other.Position = other.Position.Add(normal.Scale(overlap * invB / total))
		if vn := other.Velocity.Sub(b.Velocity).Dot(normal); vn < 0 {
			j := -(1 + restitution) * vn / total
			b.Velocity = b.Velocity.Sub(normal.Scale(j * invA))
			other.Velocity = other.Velocity.Add(normal.Scale(j * invB))
			impulses[newPair(b.Entity, other.Entity)] += j
		}
		b.sync()
		other.sync()
	}
}

// updateContacts diffs the touching pairs against the previous step and
// reports the changes.
func (w *World) updateContacts(ordered []*body) {
	current := make(map[pair]struct{})
	for _, b := range ordered {
		if b.Kind == types.BodyKindControllable {
			continue
		}
		if collision := b.object.Check(0, 0, CollisionSpaceTagLevel); collision != nil {
			for _, object := range collision.Objects {
				if b.Params.CollisionEvents && touchesRect(b.Position, b.Radius, rectOf(object)) {
					current[newPair(b.Entity, w.objects[object])] = struct{}{}
				}
			}
		}
		if collision := b.object.Check(0, 0, CollisionSpaceTagFruit); collision != nil {
			for _, object := range collision.Objects {
				other, ok := w.bodies[w.objects[object]]
				if !ok || other.Entity <= b.Entity {
					continue
				}
				if !b.Params.CollisionEvents && !other.Params.CollisionEvents {
					continue
				}
				if other.Position.Sub(b.Position).Length() <= b.Radius+other.Radius+contactSlop {
					current[newPair(b.Entity, other.Entity)] = struct{}{}
				}
			}
		}
	}

	var started, stopped []pair
	for p := range current {
		if _, ok := w.contacts[p]; !ok {
			started = append(started, p)
		}
	}
	for p := range w.contacts {
		if _, ok := current[p]; !ok {
			stopped = append(stopped, p)
		}
	}
	sortPairs(started)
	sortPairs(stopped)
	w.contacts = current

	// A change that could not be enqueued is left uncommitted and reported
	// again on the next step.
	for _, p := range stopped {
		if !w.enqueueCollision(p, types.CollisionStopped) {
			w.contacts[p] = struct{}{}
		}
	}
	for _, p := range started {
		if !w.enqueueCollision(p, types.CollisionStarted) {
			delete(w.contacts, p)
		}
	}
}

func (w *World) reportContactForces(impulses map[pair]float64, seconds float64) {
	if w.contactForceEventQueue == nil {
		return
	}
	pairs := make([]pair, 0, len(impulses))
	for p := range impulses {
		pairs = append(pairs, p)
	}
	sortPairs(pairs)
	for _, p := range pairs {
		force := impulses[p] / seconds
		threshold, ok := w.forceThreshold(p)
		if !ok || force <= threshold {
			continue
		}
		event := types.ContactForceEvent{A: p.a, B: p.b, TotalForceMagnitude: force}
		if err := w.contactForceEventQueue.Enqueue(event); err != nil {
			w.logger.Warn("Failed to enqueue contact force event: %v", err)
		}
	}
}

// forceThreshold returns the lowest positive threshold of the pair's bodies.
func (w *World) forceThreshold(p pair) (float64, bool) {
	threshold, ok := 0.0, false
	for _, entity := range []types.EntityHandle{p.a, p.b} {
		b, exists := w.bodies[entity]
		if !exists || b.Params.ContactForceThreshold <= 0 {
			continue
		}
		if !ok || b.Params.ContactForceThreshold < threshold {
			threshold, ok = b.Params.ContactForceThreshold, true
		}
	}
	return threshold, ok
}

// enqueueCollision reports whether the event was delivered. Without a queue
// there is nobody to deliver to, which counts as delivered.
func (w *World) enqueueCollision(p pair, kind types.CollisionEventKind) bool {
	if w.collisionEventQueue == nil {
		return true
	}
	event := types.CollisionEvent{A: p.a, B: p.b, Kind: kind}
	if err := w.collisionEventQueue.Enqueue(event); err != nil {
		w.logger.Warn("Failed to enqueue %s, retrying next step: %v", event, err)
		return false
	}
	return true
}

func rectOf(object *resolv.Object) Rect {
	return Rect{X: object.Position.X, Y: object.Position.Y, W: object.Size.X, H: object.Size.Y}
}

// circleRect returns the direction and depth to push a circle out of a rect.
func circleRect(center kinematic.Vector, radius float64, rect Rect) (kinematic.Vector, float64, bool) {
	closest := kinematic.Vector{
		X: math.Max(rect.X, math.Min(center.X, rect.X+rect.W)),
		Y: math.Max(rect.Y, math.Min(center.Y, rect.Y+rect.H)),
	}
	delta := center.Sub(closest)
	dist := delta.Length()
	if dist >= radius {
		return kinematic.Vector{}, 0, false
	}
	if dist > 0 {
		return delta.Scale(1 / dist), radius - dist, true
	}

	// center inside the rect: leave through the nearest side
	exits := []struct {
		normal kinematic.Vector
		depth  float64
	}{
		{kinematic.Vector{Y: 1}, rect.Y + rect.H - center.Y},
		{kinematic.Vector{X: -1}, center.X - rect.X},
		{kinematic.Vector{X: 1}, rect.X + rect.W - center.X},
		{kinematic.Vector{Y: -1}, center.Y - rect.Y},
	}
	best := exits[0]
	for _, exit := range exits[1:] {
		if exit.depth < best.depth {
			best = exit
		}
	}
	return best.normal, best.depth + radius, true
}

func touchesRect(center kinematic.Vector, radius float64, rect Rect) bool {
	closest := kinematic.Vector{
		X: math.Max(rect.X, math.Min(center.X, rect.X+rect.W)),
		Y: math.Max(rect.Y, math.Min(center.Y, rect.Y+rect.H)),
	}
	return center.Sub(closest).Length() <= radius+contactSlop
}
