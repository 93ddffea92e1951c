package objects

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// GameObject is the highest level interface for game related types.
type GameObject interface {
	Lifecycle

	GetID() string
	GetZIndex() int
	GetParent() GameObject
	SetParent(parent GameObject)
	GetChildren() []GameObject
	AddChild(id string, child GameObject) error
	RemoveChild(id string) error
	RemoveFromParent() error
}

// children keeps child objects indexed by id in insertion order.
type children struct {
	idxIDObjects map[string]GameObject
	ordered      []GameObject
}

func newChildren() *children {
	return &children{idxIDObjects: make(map[string]GameObject)}
}

func (c *children) Add(id string, child GameObject) {
	c.idxIDObjects[id] = child
	c.ordered = append(c.ordered, child)
}

func (c *children) Get(id string) GameObject {
	return c.idxIDObjects[id]
}

func (c *children) Remove(id string) {
	delete(c.idxIDObjects, id)
	for i, obj := range c.ordered {
		if obj.GetID() == id {
			c.ordered = append(c.ordered[:i], c.ordered[i+1:]...)
			return
		}
	}
}

// BaseObject implements the tree plumbing of GameObject. Concrete objects
// embed it and override Update and Draw.
type BaseObject struct {
	id       string
	zIndex   int
	parent   GameObject
	children *children
}

var _ GameObject = &BaseObject{}

type NewBaseObjectOpts struct {
	// ZIndex orders siblings inside a SortedZIndexObject. Lower draws first.
	ZIndex int
}

func NewBaseObject(id string, opts *NewBaseObjectOpts) *BaseObject {
	o := &BaseObject{
		id:       id,
		children: newChildren(),
	}
	if opts != nil {
		o.zIndex = opts.ZIndex
	}
	return o
}

func (o *BaseObject) Init() error    { return nil }
func (o *BaseObject) Destroy() error { return nil }
func (o *BaseObject) Update() error  { return nil }

func (o *BaseObject) Draw(screen *ebiten.Image) {}

func (o *BaseObject) GetID() string {
	return o.id
}

func (o *BaseObject) GetZIndex() int {
	return o.zIndex
}

func (o *BaseObject) GetParent() GameObject {
	return o.parent
}

func (o *BaseObject) SetParent(parent GameObject) {
	o.parent = parent
}

func (o *BaseObject) GetChildren() []GameObject {
	return o.children.ordered
}

func (o *BaseObject) AddChild(id string, child GameObject) error {
	if o.children.Get(id) != nil {
		return fmt.Errorf("child object with id already exists")
	}
	if err := InitTree(child); err != nil {
		return fmt.Errorf("failed to initialize child object tree: %v", err)
	}
	o.children.Add(id, child)
	child.SetParent(o)
	return nil
}

func (o *BaseObject) RemoveChild(id string) error {
	child := o.children.Get(id)
	if child == nil {
		return fmt.Errorf("child object with id does not exist")
	}
	if err := DestroyTree(child); err != nil {
		return fmt.Errorf("failed to destroy child object tree: %v", err)
	}
	o.children.Remove(id)
	child.SetParent(nil)
	return nil
}

// RemoveFromParent detaches the object at the end of the current tree update.
func (o *BaseObject) RemoveFromParent() error {
	if o.parent == nil {
		return fmt.Errorf("object %s has no parent", o.id)
	}
	pendingRemovals = append(pendingRemovals, pendingRemoval{parent: o.parent, id: o.id})
	return nil
}

type pendingRemoval struct {
	parent GameObject
	id     string
}

var pendingRemovals []pendingRemoval

func InitTree(root GameObject) error {
	if err := root.Init(); err != nil {
		return err
	}
	for _, child := range root.GetChildren() {
		if err := InitTree(child); err != nil {
			return err
		}
	}
	return nil
}

func DestroyTree(root GameObject) error {
	for _, child := range root.GetChildren() {
		if err := DestroyTree(child); err != nil {
			return err
		}
	}
	return root.Destroy()
}

// UpdateTree updates root and its descendants, then applies removals
// requested during the update.
func UpdateTree(root GameObject) error {
	if err := updateTree(root); err != nil {
		return err
	}
	removals := pendingRemovals
	pendingRemovals = nil
	for _, r := range removals {
		if err := r.parent.RemoveChild(r.id); err != nil {
			return fmt.Errorf("failed to remove %s: %v", r.id, err)
		}
	}
	return nil
}

func updateTree(root GameObject) error {
	if err := root.Update(); err != nil {
		return err
	}
	for _, child := range root.GetChildren() {
		if err := updateTree(child); err != nil {
			return err
		}
	}
	return nil
}

func DrawTree(root GameObject, screen *ebiten.Image) {
	root.Draw(screen)
	for _, child := range root.GetChildren() {
		DrawTree(child, screen)
	}
}
