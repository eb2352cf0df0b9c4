package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for creature decision overrides.
// Single-goroutine access only (turn loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
// Scripts in core/ load first so ai/ scripts can use their helpers.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "ai"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// --- Creature AI Bridge ---

// Sighting is a visible entity passed into the AI context.
type Sighting struct {
	Type string
	X, Y int32
	Dist int32 // taxicab
}

// CreatureContext holds pre-packed data for one creature decision.
type CreatureContext struct {
	EntityID   uint64
	Type       string
	Controller string
	X, Y       int32
	Turn       uint64

	// Built-in decision ("wait", "up", ...), before the override.
	Proposal string

	Threat *Sighting // nearest visible enemy
	Target *Sighting // nearest visible attractor
	Memory *Sighting // last remembered target position (Type empty)

	// Occupancy of the four neighbour cells, keyed by move name.
	Blocked map[string]bool
}

// HasCreatureAI reports whether a creature_ai function is defined.
func (e *Engine) HasCreatureAI() bool {
	return e.vm.GetGlobal("creature_ai") != lua.LNil
}

// CreatureAI calls Lua creature_ai(ctx). It returns the move name the script
// chose, or ok=false when the script kept the proposal (returned nil) or failed.
func (e *Engine) CreatureAI(ctx CreatureContext) (move string, ok bool) {
	fn := e.vm.GetGlobal("creature_ai")
	if fn == lua.LNil {
		return "", false
	}

	t := e.vm.NewTable()
	t.RawSetString("entity_id", lua.LNumber(ctx.EntityID))
	t.RawSetString("type", lua.LString(ctx.Type))
	t.RawSetString("controller", lua.LString(ctx.Controller))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("turn", lua.LNumber(ctx.Turn))
	t.RawSetString("proposal", lua.LString(ctx.Proposal))
	if ctx.Threat != nil {
		t.RawSetString("threat", e.sightingTable(ctx.Threat))
	}
	if ctx.Target != nil {
		t.RawSetString("target", e.sightingTable(ctx.Target))
	}
	if ctx.Memory != nil {
		t.RawSetString("memory", e.sightingTable(ctx.Memory))
	}
	blocked := e.vm.NewTable()
	for name, b := range ctx.Blocked {
		blocked.RawSetString(name, lua.LBool(b))
	}
	t.RawSetString("blocked", blocked)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua creature_ai error", zap.Error(err), zap.Uint64("entity", ctx.EntityID))
		return "", false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	s, isStr := result.(lua.LString)
	if !isStr {
		return "", false
	}
	return string(s), true
}

func (e *Engine) sightingTable(s *Sighting) *lua.LTable {
	row := e.vm.NewTable()
	if s.Type != "" {
		row.RawSetString("type", lua.LString(s.Type))
	}
	row.RawSetString("x", lua.LNumber(s.X))
	row.RawSetString("y", lua.LNumber(s.Y))
	row.RawSetString("dist", lua.LNumber(s.Dist))
	return row
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
