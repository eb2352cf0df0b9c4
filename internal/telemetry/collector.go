package telemetry

import (
	"go.uber.org/zap"

	"github.com/pawsteps/engine/internal/core/event"
)

// Collector counts turn events and closes one TurnRecord per TurnCompleted.
type Collector struct {
	out   *OutputManager // nil: records kept in memory only
	log   *zap.Logger
	level string

	cur     TurnRecord
	records []TurnRecord
}

// NewCollector subscribes a collector to bus.
func NewCollector(bus *event.Bus, out *OutputManager, log *zap.Logger) *Collector {
	c := &Collector{out: out, log: log}
	event.Subscribe(bus, c.onMoved)
	event.Subscribe(bus, c.onConsumed)
	event.Subscribe(bus, c.onLeash)
	event.Subscribe(bus, c.onTurn)
	return c
}

// SetLevel names the level written into subsequent records.
func (c *Collector) SetLevel(name string) {
	c.level = name
	c.cur = TurnRecord{}
}

func (c *Collector) onMoved(ev event.EntityMoved) {
	c.cur.Moved++
	if ev.Pushed {
		c.cur.Pushed++
	}
}

func (c *Collector) onConsumed(event.EntityConsumed) { c.cur.Consumed++ }

func (c *Collector) onLeash(event.LeashHeld) { c.cur.Leashed++ }

func (c *Collector) onTurn(ev event.TurnCompleted) {
	rec := c.cur
	rec.Level = c.level
	rec.Turn = ev.Turn
	rec.PlayerMove = ev.Move.String()
	rec.Entities = ev.Entities
	rec.State = ev.State
	c.cur = TurnRecord{}

	c.records = append(c.records, rec)
	if err := c.out.WriteTurn(rec); err != nil {
		c.log.Warn("telemetry write failed", zap.Error(err), zap.Uint64("turn", rec.Turn))
	}
}

// Records returns every record collected so far.
func (c *Collector) Records() []TurnRecord { return c.records }
