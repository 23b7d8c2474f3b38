package scene

import (
	"iter"
	"reflect"
)

// Handle is a generation-checked reference into a scene's dense component
// pool. A handle goes stale as soon as its slot is released; stale handles
// resolve to nothing instead of aliasing a later occupant.
type Handle struct {
	index uint32
	gen   uint32
}

type poolSlot struct {
	owner *Entity
	comp  Component
	gen   uint32
	live  bool
}

// componentPool stores all attached components of one concrete type
// contiguously, so same-type iteration walks a dense slice instead of chasing
// every entity's sparse map. Freed slots are reused; generations guard stale
// handles.
type componentPool struct {
	slots []poolSlot
	free  []uint32
	count int
}

func (p *componentPool) put(owner *Entity, c Component) Handle {
	p.count++
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		slot := &p.slots[idx]
		slot.owner = owner
		slot.comp = c
		slot.live = true
		return Handle{index: idx, gen: slot.gen}
	}
	p.slots = append(p.slots, poolSlot{owner: owner, comp: c, live: true})
	return Handle{index: uint32(len(p.slots) - 1)}
}

func (p *componentPool) release(h Handle) {
	if int(h.index) >= len(p.slots) {
		return
	}
	slot := &p.slots[h.index]
	if !slot.live || slot.gen != h.gen {
		return
	}
	slot.owner = nil
	slot.comp = nil
	slot.live = false
	slot.gen++
	p.free = append(p.free, h.index)
	p.count--
}

func (p *componentPool) resolve(h Handle) (*Entity, Component, bool) {
	if int(h.index) >= len(p.slots) {
		return nil, nil, false
	}
	slot := &p.slots[h.index]
	if !slot.live || slot.gen != h.gen {
		return nil, nil, false
	}
	return slot.owner, slot.comp, true
}

// poolSet is the per-scene collection of dense pools, one per component type.
type poolSet struct {
	pools map[reflect.Type]*componentPool
}

func newPoolSet() poolSet {
	return poolSet{pools: make(map[reflect.Type]*componentPool)}
}

func (ps *poolSet) put(t reflect.Type, owner *Entity, c Component) Handle {
	pool, ok := ps.pools[t]
	if !ok {
		pool = &componentPool{}
		ps.pools[t] = pool
	}
	return pool.put(owner, c)
}

func (ps *poolSet) release(t reflect.Type, h Handle) {
	if pool, ok := ps.pools[t]; ok {
		pool.release(h)
	}
}

func (ps *poolSet) count(t reflect.Type) int {
	if pool, ok := ps.pools[t]; ok {
		return pool.count
	}
	return 0
}

func (ps *poolSet) iter(t reflect.Type) iter.Seq2[*Entity, Component] {
	return func(yield func(*Entity, Component) bool) {
		pool, ok := ps.pools[t]
		if !ok {
			return
		}
		for i := range pool.slots {
			slot := &pool.slots[i]
			if !slot.live {
				continue
			}
			if !yield(slot.owner, slot.comp) {
				return
			}
		}
	}
}
