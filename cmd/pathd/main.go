package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/width"

	"github.com/voxelpath/pathd/internal/config"
	"github.com/voxelpath/pathd/internal/core/event"
	coresys "github.com/voxelpath/pathd/internal/core/system"
	"github.com/voxelpath/pathd/internal/data"
	"github.com/voxelpath/pathd/internal/jps"
	"github.com/voxelpath/pathd/internal/metrics"
	"github.com/voxelpath/pathd/internal/pathfinder"
	"github.com/voxelpath/pathd/internal/persist"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Display helpers ───────────────────────────────────────────────

var printer = message.NewPrinter(language.TraditionalChinese)

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              pathd  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        3D 跳點搜尋 · 體素尋路服務         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m服務:\033[0m %s\n\n", name)
}

// displayWidth counts East Asian wide characters as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func printSection(title string) {
	lineLen := 46 - displayWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := printer.Sprintf("%d", count)
	dotsLen := 42 - displayWidth(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printFail(msg string) {
	fmt.Printf("  \033[31m✗\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Batch run ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/pathd.toml"
	if p := os.Getenv("PATHD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Service.Name)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Optional metric store
	printSection("資料庫")
	var (
		metricRepo   *persist.MetricRepo
		snapshotRepo *persist.SnapshotRepo
	)
	if cfg.Database.DSN == "" {
		printOK("未設定 DSN，指標僅保留於記憶體")
	} else {
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL 連線成功")

		version, err := persist.RunMigrations(dbCtx, db.Pool)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("資料庫遷移完成 (版本 %d)", version))
		metricRepo = persist.NewMetricRepo(db)
		snapshotRepo = persist.NewSnapshotRepo(db)
	}
	fmt.Println()

	// 4. Load maps
	printSection("地圖載入")
	maps, err := data.LoadMaps(cfg.World.MapList)
	if err != nil {
		return fmt.Errorf("load maps: %w", err)
	}
	printStat("地圖", maps.Count())
	if maps.Get(cfg.World.Map) == nil {
		return fmt.Errorf("default map %q not in %s", cfg.World.Map, cfg.World.MapList)
	}
	for _, name := range maps.Names() {
		entry := maps.Get(name)
		printStat(fmt.Sprintf("  %s 方塊", name), entry.Grid.Len())
		if snapshotRepo != nil && entry.Checksum != "" {
			if err := recordSnapshot(ctx, snapshotRepo, entry, log); err != nil {
				return fmt.Errorf("record snapshot %s: %w", name, err)
			}
		}
	}

	oracles := newOracleSet(maps, cfg.World, cfg.Scripting, log)
	defer oracles.Close()
	if cfg.Scripting.Enabled {
		printOK(fmt.Sprintf("Lua 移動腳本 (%s)", cfg.Scripting.Dir))
	} else {
		printOK(fmt.Sprintf("移動模式 %s", strings.Join(cfg.World.Modes, ", ")))
	}

	// 5. Load requests
	requests, err := data.LoadRequests(cfg.World.Requests)
	if err != nil {
		return fmt.Errorf("load requests: %w", err)
	}
	printStat("尋路請求", len(requests))
	fmt.Println()

	batch := make([]pathfinder.Request, 0, len(requests))
	for i, r := range requests {
		req, err := buildRequest(cfg, r, oracles)
		if err != nil {
			return fmt.Errorf("request %d: %w", i, err)
		}
		batch = append(batch, req)
	}

	// 6. Create systems and register with runner
	bus := event.NewBus()
	recorder := metrics.NewRecorder()
	svc := pathfinder.NewSystem(pathfinder.Options{
		Workers:   cfg.Workers.Count,
		QueueSize: cfg.Workers.QueueSize,
	}, bus, recorder, log)

	runner := coresys.NewRunner()
	runner.Register(event.NewDispatchSystem(bus))
	runner.Register(svc)
	runner.Register(pathfinder.NewReportSystem(svc, recorder, 20))
	var flush *pathfinder.FlushSystem
	if metricRepo != nil {
		flush = pathfinder.NewFlushSystem(bus, metricRepo, 20, log)
		runner.Register(flush)
	}

	var results []event.PathReady
	event.Subscribe(bus, func(e event.PathReady) { results = append(results, e) })

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start pathfinder: %w", err)
	}

	// 7. Run the batch
	printSection("尋路")
	printReady(fmt.Sprintf("工作者 %d，迴圈 tick %s", cfg.Workers.Count, cfg.Service.TickRate))

	ticker := time.NewTicker(cfg.Service.TickRate)
	defer ticker.Stop()

	backlog := batch
	delivered := 0
	for delivered < len(batch) || len(results) < len(batch) {
		// A requester may appear several times; later entries wait for the
		// earlier one to be delivered.
		backlog = submit(svc, backlog, &delivered)

		select {
		case <-ticker.C:
			runner.Tick(cfg.Service.TickRate)
		case <-ctx.Done():
			log.Info("收到關閉信號", zap.Int("delivered", delivered))
			return svc.Shutdown()
		}
	}
	if err := svc.Shutdown(); err != nil {
		return err
	}
	if flush != nil {
		flush.Flush()
	}

	for _, e := range results {
		printResult(e)
	}
	fmt.Println()

	printSection("統計")
	total, success, fail := recorder.Totals()
	printStat("總數", total)
	printStat("成功", success)
	printStat("失敗", fail)
	fmt.Println()
	fmt.Print(recorder.Summary())

	if metricRepo != nil {
		stored, ok, err := metricRepo.SuccessRate(ctx)
		if err != nil {
			log.Warn("查詢指標失敗", zap.Error(err))
		} else {
			printStat("已儲存", stored)
			printStat("已儲存成功", ok)
		}
	}
	return nil
}

func buildRequest(cfg *config.Config, r data.PathRequest, oracles *oracleSet) (pathfinder.Request, error) {
	mapName := r.Map
	if mapName == "" {
		mapName = cfg.World.Map
	}
	oracle, err := oracles.get(mapName, r.Modes)
	if err != nil {
		return pathfinder.Request{}, err
	}

	var extra []jps.Option
	if r.GoalDistance != nil {
		extra = append(extra, jps.WithGoalDistance(*r.GoalDistance))
	}
	if r.LineOfSight != nil {
		extra = append(extra, jps.WithLineOfSight(*r.LineOfSight))
	}
	if r.MaxDepth != nil {
		extra = append(extra, jps.WithMaxDepth(*r.MaxDepth))
	}
	sc, err := pathfinder.SearchConfig(cfg.Pathfinder, r.StartPos(), r.GoalPos(), oracle, extra...)
	if err != nil {
		return pathfinder.Request{}, err
	}
	return pathfinder.Request{Requester: r.Requester, Map: mapName, Config: sc}, nil
}

// submit queues as much of the backlog as the service accepts and returns
// the rest. Each request's callback counts its delivery.
func submit(svc *pathfinder.System, backlog []pathfinder.Request, delivered *int) []pathfinder.Request {
	rest := backlog[:0:0]
	for _, req := range backlog {
		req.Callback = func(pathfinder.Response) { *delivered++ }
		if _, ok := svc.RequestPath(req); !ok {
			rest = append(rest, req)
		}
	}
	return rest
}

func printResult(e event.PathReady) {
	label := fmt.Sprintf("#%d 請求者 %d @ %s %s → %s", e.ID, e.Requester, e.Map, e.Start, e.Goal)
	switch {
	case e.Err != nil:
		printFail(fmt.Sprintf("%s：%v", label, e.Err))
	case !e.Found:
		printFail(fmt.Sprintf("%s：無路徑 (%s)", label, e.Stats.Elapsed))
	default:
		points := make([]string, len(e.Path))
		for i, p := range e.Path {
			points[i] = p.String()
		}
		printOK(printer.Sprintf("%s：成本 %.2f，展開 %d，%s", label, e.Stats.Cost, e.Stats.Expansions, e.Stats.Elapsed))
		fmt.Printf("      %s\n", strings.Join(points, " → "))
	}
}

func recordSnapshot(ctx context.Context, repo *persist.SnapshotRepo, entry *data.MapEntry, log *zap.Logger) error {
	prev, err := repo.Load(ctx, entry.Info.Name)
	if err != nil {
		return err
	}
	if prev != nil && prev.Checksum != entry.Checksum {
		log.Info("地圖快照已變更",
			zap.String("map", entry.Info.Name),
			zap.String("previous", prev.Checksum),
			zap.String("current", entry.Checksum))
	}
	return repo.Save(ctx, entry.Info.Name, entry.Checksum, entry.Grid.Len())
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
