package ecs

// EntityID is an opaque handle: slot index in the low 32 bits, slot
// generation in the high 32 bits. A destroyed slot bumps its generation, so
// old handles stop resolving. Slot 0 is never issued; the zero EntityID
// means "no entity".
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

type slot struct {
	gen  uint32
	live bool
}

// EntityPool issues handles and recycles freed slots oldest first.
type EntityPool struct {
	slots []slot
	free  []uint32 // FIFO
	live  int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		slots: make([]slot, 1, 64), // slot 0 reserved
	}
}

func (p *EntityPool) Create() EntityID {
	var idx uint32
	if len(p.free) > 0 {
		idx = p.free[0]
		p.free = p.free[1:]
	} else {
		idx = uint32(len(p.slots))
		p.slots = append(p.slots, slot{})
	}
	s := &p.slots[idx]
	s.live = true
	p.live++
	return NewEntityID(idx, s.gen)
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || int(idx) >= len(p.slots) {
		return false
	}
	s := p.slots[idx]
	return s.live && s.gen == id.Generation()
}

// Destroy frees the handle's slot. Stale handles are ignored.
func (p *EntityPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return
	}
	idx := id.Index()
	s := &p.slots[idx]
	s.live = false
	s.gen++
	p.free = append(p.free, idx)
	p.live--
}

// Live returns the number of handles currently alive.
func (p *EntityPool) Live() int { return p.live }
