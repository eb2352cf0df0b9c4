// pawsteps is the headless runner: it plays move scripts against level files
// and keeps levels and finished runs in PostgreSQL.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pawsteps/engine/internal/config"
	"github.com/pawsteps/engine/internal/core/grid"
	"github.com/pawsteps/engine/internal/data"
	"github.com/pawsteps/engine/internal/game"
	"github.com/pawsteps/engine/internal/persist"
	"github.com/pawsteps/engine/internal/scripting"
	"github.com/pawsteps/engine/internal/system"
	"github.com/pawsteps/engine/internal/telemetry"
	"github.com/pawsteps/engine/internal/world"
)

const usage = `Usage: pawsteps <command> [args]

Commands:
  play <level> <moves>   play a move script ("RRUW" or "right,up") against a level file
  save <level>           store a level file in the database
  fetch <name> <out>     write a stored level to a file
  levels                 list stored levels
  best <name>            shortest recorded wins of a stored level

Config: $PAWSTEPS_CONFIG (default config/engine.toml)`

var errDBDisabled = errors.New("database disabled in config ([database] enabled = false)")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printSection(title string) {
	fmt.Printf("  \033[33m── %s ──\033[0m\n", title)
}

type app struct {
	cfg *config.Config
	log *zap.Logger
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return errors.New("no command")
	}

	// 1. Load config
	cfgPath := "config/engine.toml"
	explicit := false
	if p := os.Getenv("PAWSTEPS_CONFIG"); p != "" {
		cfgPath = p
		explicit = true
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = config.Default()
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, log: log}
	cmd, rest := args[0], args[1:]
	need := map[string]int{"play": 2, "save": 1, "fetch": 2, "levels": 0, "best": 1}
	n, ok := need[cmd]
	if !ok {
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	if len(rest) != n {
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("%s takes %d argument(s), got %d", cmd, n, len(rest))
	}

	switch cmd {
	case "play":
		return a.play(ctx, rest[0], rest[1])
	case "save":
		return a.save(ctx, rest[0])
	case "fetch":
		return a.fetch(ctx, rest[0], rest[1])
	case "levels":
		return a.levels(ctx)
	default:
		return a.best(ctx, rest[0])
	}
}

// relations loads the configured overlay. A missing default file falls back
// to the built-in table.
func (a *app) relations() (*data.RelationTable, error) {
	path := a.cfg.Data.Relations
	if path == "" {
		return nil, nil
	}
	rel, err := data.LoadRelationTable(path)
	if errors.Is(err, fs.ErrNotExist) {
		a.log.Warn("relations file not found, using built-in table", zap.String("path", path))
		return nil, nil
	}
	return rel, err
}

func (a *app) openDB(ctx context.Context) (*persist.DB, error) {
	if !a.cfg.Database.Enabled {
		return nil, errDBDisabled
	}
	db, err := persist.NewDB(ctx, a.cfg.Database, a.log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := db.Migrate(ctx, a.log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

func (a *app) play(ctx context.Context, levelPath, script string) error {
	moves, err := grid.ParseMoves(script)
	if err != nil {
		return fmt.Errorf("moves: %w", err)
	}
	rel, err := a.relations()
	if err != nil {
		return err
	}

	var scripts *scripting.Engine
	if dir := a.cfg.Data.ScriptsDir; dir != "" {
		if scripts, err = scripting.NewEngine(dir, a.log); err != nil {
			return fmt.Errorf("scripts: %w", err)
		}
		defer scripts.Close()
	}

	sess := game.NewSession(game.Options{
		Log:           a.log,
		Relations:     rel,
		Scripts:       scripts,
		ViewRadius:    a.cfg.Engine.ViewRadius,
		PathfindSteps: a.cfg.Engine.PathfindSteps,
		HeadOn:        system.HeadOnMode(a.cfg.Engine.HeadOn),
		Strict:        a.cfg.Engine.StrictInvariants,
	})

	out, err := telemetry.NewOutputManager(a.cfg.Telemetry.OutputDir)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer out.Close()
	collector := telemetry.NewCollector(sess.Bus(), out, a.log)

	if err := sess.LoadFile(levelPath); err != nil {
		return err
	}
	l := sess.Level()
	collector.SetLevel(l.Name)

	printSection(levelTitle(l))
	fmt.Print(renderBoard(sess.Entities()))

	state, turns := sess.Play(moves)

	printSection(fmt.Sprintf("after %d turn(s)", turns))
	fmt.Print(renderBoard(sess.Entities()))
	printOK(fmt.Sprintf("outcome: %s", state))
	if state == world.Win && l.NextLevel != "" {
		printOK(fmt.Sprintf("next level: %s", l.NextLevel))
	}
	if dir := out.Dir(); dir != "" {
		printOK(fmt.Sprintf("telemetry: %d turn(s) appended under %s", len(collector.Records()), dir))
	}

	if !a.cfg.Database.Enabled || persist.Slug(l.Name) == "" {
		return nil
	}
	dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	db, err := a.openDB(dbCtx)
	if err != nil {
		a.log.Warn("run not recorded", zap.Error(err))
		return nil
	}
	defer db.Close()
	run := persist.RunRow{
		Slug:    persist.Slug(l.Name),
		Moves:   grid.FormatMoves(moves[:turns]),
		Turns:   turns,
		Outcome: state.String(),
	}
	if err := persist.NewRunRepo(db).Record(dbCtx, run); err != nil {
		a.log.Warn("run not recorded", zap.Error(err))
		return nil
	}
	printOK("run recorded")
	return nil
}

func (a *app) save(ctx context.Context, levelPath string) error {
	rel, err := a.relations()
	if err != nil {
		return err
	}
	l, err := world.LoadFile(levelPath, rel)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	changed, err := persist.NewLevelRepo(db).Save(ctx, l)
	if err != nil {
		return err
	}
	if changed {
		printOK(fmt.Sprintf("stored %q as %s", l.Name, persist.Slug(l.Name)))
	} else {
		printOK(fmt.Sprintf("%q unchanged", l.Name))
	}
	return nil
}

func (a *app) fetch(ctx context.Context, name, outPath string) error {
	rel, err := a.relations()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	l, err := persist.NewLevelRepo(db).Load(ctx, name, rel)
	if err != nil {
		return err
	}
	if l == nil {
		return fmt.Errorf("level %q not stored", name)
	}
	if err := world.SaveFile(outPath, l); err != nil {
		return err
	}
	printOK(fmt.Sprintf("wrote %s (%d entities)", outPath, l.Len()))
	return nil
}

func (a *app) levels(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := persist.NewLevelRepo(db).List(ctx)
	if err != nil {
		return err
	}
	printSection(fmt.Sprintf("%d stored level(s)", len(rows)))
	for _, r := range rows {
		next := r.NextLevel
		if next == "" {
			next = "-"
		}
		fmt.Printf("  %-24s %-24s next=%-16s %s  %s\n",
			r.Slug, r.Name, next, hex.EncodeToString(r.Digest)[:12], r.UpdatedAt.Format(time.DateTime))
	}
	return nil
}

func (a *app) best(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	slug := persist.Slug(name)
	runs, err := persist.NewRunRepo(db).Best(ctx, slug, 5)
	if err != nil {
		return err
	}
	printSection(fmt.Sprintf("best runs of %s", slug))
	for i, r := range runs {
		fmt.Printf("  %d. %3d turn(s)  %s  %s\n", i+1, r.Turns, r.Moves, r.FinishedAt.Format(time.DateTime))
	}
	if len(runs) == 0 {
		fmt.Println("  no wins recorded")
	}
	return nil
}

func levelTitle(l *world.Level) string {
	if l.Name == "" {
		return l.Path
	}
	return l.Name
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
