package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/efreeman/statecraft/internal/agent"
	"github.com/efreeman/statecraft/internal/config"
	"github.com/efreeman/statecraft/internal/gameclient"
	"github.com/efreeman/statecraft/internal/llm"
	"github.com/efreeman/statecraft/internal/logger"
	"github.com/efreeman/statecraft/internal/repository/postgres"
	redisrepo "github.com/efreeman/statecraft/internal/repository/redis"
	"github.com/efreeman/statecraft/internal/scheduler"
	"github.com/efreeman/statecraft/pkg/board"
	"github.com/efreeman/statecraft/pkg/mapctx"
)

// contextTTL bounds how long a composed context stays cached; a phase never
// lasts longer than this.
const contextTTL = 6 * time.Hour

func main() {
	gameID := flag.String("game", "", "game ID to play")
	flag.Parse()

	logger.Init()
	cfg := config.Load()
	if *gameID == "" {
		log.Fatal().Msg("-game is required")
	}

	db, err := postgres.Connect(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	cache, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer cache.Close()

	runRepo := postgres.NewRunRepo(db)
	msgRepo := postgres.NewMessageRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	diaryRepo := postgres.NewDiaryRepo(db)

	assignments, err := config.LoadModelAssignments(cfg.ModelsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Model assignments failed to load")
	}

	agents := make(map[board.Power]*agent.Agent)
	clients := make(map[board.Power]*gameclient.Client)
	for _, power := range board.AllPowers() {
		model := assignments.ModelFor(string(power), cfg.DefaultModel)
		llmClient := llm.NewOpenAIClient(model, cfg.LLMBaseURL, cfg.LLMAPIKey)
		agents[power] = agent.New(power, llmClient, logger.ForModel(string(power), model))
		clients[power] = gameclient.New(string(power), cfg.GameServerURL, logger.ForPower(string(power)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("Shutting down")
		cancel()
	}()

	orch := &orchestrator{
		cfg:       cfg,
		gameID:    *gameID,
		agents:    agents,
		clients:   clients,
		sched:     scheduler.New(agents, msgRepo, orderRepo, cfg.NegotiationRounds, log.Logger),
		runs:      runRepo,
		diary:     diaryRepo,
		cache:     cache,
		composer:  mapctx.NewComposer(mapctx.SharedGraph(board.StandardMap(), log.Logger), board.StandardMap(), log.Logger),
	}
	if err := orch.run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("Run failed")
	}
	log.Info().Msg("Run complete")
}

// orchestrator plays one game end to end.
type orchestrator struct {
	cfg      *config.Config
	gameID   string
	agents   map[board.Power]*agent.Agent
	clients  map[board.Power]*gameclient.Client
	sched    *scheduler.Scheduler
	runs     *postgres.RunRepo
	diary    *postgres.DiaryRepo
	cache    *redisrepo.Client
	composer *mapctx.Composer
}

func (o *orchestrator) run(ctx context.Context) error {
	for power, c := range o.clients {
		if err := c.Login(ctx); err != nil {
			return fmt.Errorf("login %s: %w", power, err)
		}
		if err := c.ConnectWS(); err != nil {
			return fmt.Errorf("connect ws %s: %w", power, err)
		}
		defer c.CloseWS()
		if err := c.SubscribeGame(o.gameID); err != nil {
			return fmt.Errorf("subscribe %s: %w", power, err)
		}
	}

	for power, a := range o.agents {
		a.SetGoals(agent.OpeningGoals(power))
	}

	models, _ := json.Marshal(agentModels(o.agents))
	run, err := o.runs.CreateRun(ctx, o.gameID, models)
	if err != nil {
		return err
	}
	if err := o.runs.SetRunStatus(ctx, run.ID, "active"); err != nil {
		return err
	}
	defer o.cache.ClearRun(ctx, run.ID)

	// Any client's event stream sees the shared game events. The orchestrator
	// follows one stream and drains the rest so their read loops never stall.
	events := o.clients[board.France].Events()
	for power, c := range o.clients {
		if power == board.France {
			continue
		}
		go func(ch <-chan gameclient.Event) {
			for range ch {
			}
		}(c.Events())
	}

	for {
		if err := o.playPhase(ctx, run.ID); err != nil {
			o.runs.SetRunStatus(ctx, run.ID, "aborted")
			return err
		}

		finished, winner, err := waitForResolution(ctx, events)
		if err != nil {
			o.runs.SetRunStatus(ctx, run.ID, "aborted")
			return err
		}
		if finished {
			stats := o.sched.Stats()
			log.Info().
				Interface("decodingErrors", stats.DecodingErrors()).
				Interface("llmFailures", stats.LLMFailures()).
				Str("winner", winner).
				Msg("Game finished")
			return o.runs.FinishRun(ctx, run.ID, winner)
		}
	}
}

// playPhase drives one phase: compose contexts, negotiate and plan on
// movement phases, then collect and submit orders.
func (o *orchestrator) playPhase(ctx context.Context, runID string) error {
	anyClient := o.clients[board.France]
	if err := anyClient.EnsureSession(ctx); err != nil {
		return err
	}
	info, err := anyClient.CurrentPhase(ctx, o.gameID)
	if err != nil {
		return fmt.Errorf("current phase: %w", err)
	}
	phaseLabel := fmt.Sprintf("%.1s%d%.1s", info.Season, info.Year, info.PhaseType)
	log.Info().Str("phase", phaseLabel).Msg("Phase started")

	var state board.GameState
	if err := json.Unmarshal(info.State, &state); err != nil {
		return fmt.Errorf("decode game state: %w", err)
	}
	snap := mapctx.SnapshotFromState(&state)

	phase, err := o.runs.CreatePhase(ctx, runID, info.Year, info.Season, info.PhaseType, info.State)
	if err != nil {
		return err
	}
	if err := o.cache.SetBoardState(ctx, runID, phaseLabel, info.State); err != nil {
		log.Warn().Err(err).Str("phase", phaseLabel).Msg("board state cache write failed")
	}

	contexts := make(map[board.Power]string)
	possible := make(map[board.Power]map[string][]string)
	for power, c := range o.clients {
		if !state.PowerIsAlive(power) {
			continue
		}
		if err := c.EnsureSession(ctx); err != nil {
			return err
		}
		pinfo, err := c.CurrentPhase(ctx, o.gameID)
		if err != nil {
			return fmt.Errorf("current phase for %s: %w", power, err)
		}
		possible[power] = pinfo.PossibleOrders
		contexts[power] = o.composeCached(ctx, runID, phaseLabel, power, snap, pinfo.PossibleOrders)
	}

	if info.PhaseType == "MOVEMENT" {
		o.sched.RunPlanning(ctx, phaseLabel, contexts)
		if _, err := o.sched.RunNegotiations(ctx, phase.ID, phaseLabel, contexts); err != nil {
			return err
		}
	}

	orders, err := o.sched.RunOrders(ctx, phase.ID, phaseLabel, contexts, possible)
	if err != nil {
		return err
	}
	for power, list := range orders {
		c := o.clients[power]
		if err := c.SubmitOrders(ctx, o.gameID, list); err != nil {
			return fmt.Errorf("submit orders %s: %w", power, err)
		}
		if err := c.MarkReady(ctx, o.gameID); err != nil {
			return fmt.Errorf("mark ready %s: %w", power, err)
		}
		note := fmt.Sprintf("submitted %d orders", len(list))
		o.agents[power].RecordDiary(phaseLabel, "orders", note)
		if _, err := o.diary.Append(ctx, runID, string(power), phaseLabel, "orders", note); err != nil {
			log.Warn().Err(err).Str("power", string(power)).Msg("diary persistence failed")
		}
	}
	if info.PhaseType == "MOVEMENT" {
		o.sched.RunStateUpdates(ctx, phaseLabel, contexts)
	}

	for power, a := range o.agents {
		summary, consolidated, err := a.MaybeConsolidateDiary(ctx, phaseLabel)
		if err != nil {
			log.Warn().Err(err).Str("power", string(power)).Msg("diary consolidation failed")
			continue
		}
		if !consolidated {
			continue
		}
		if err := o.diary.ReplaceWithSummary(ctx, runID, string(power), phaseLabel, summary); err != nil {
			log.Warn().Err(err).Str("power", string(power)).Msg("diary summary persistence failed")
		}
	}
	return o.runs.ResolvePhase(ctx, phase.ID)
}

// composeCached returns the composed context for a power, consulting the
// Redis cache first.
func (o *orchestrator) composeCached(ctx context.Context, runID, phase string, power board.Power, snap *mapctx.Snapshot, orders map[string][]string) string {
	if text, ok, err := o.cache.GetContext(ctx, runID, phase, string(power)); err == nil && ok {
		return text
	}
	text := o.composer.Compose(snap, power, orders)
	if err := o.cache.SetContext(ctx, runID, phase, string(power), text, contextTTL); err != nil {
		log.Warn().Err(err).Str("power", string(power)).Msg("context cache write failed")
	}
	return text
}

// waitForResolution blocks until the server resolves the phase or ends the
// game. Returns finished=true with the winner on game end.
func waitForResolution(ctx context.Context, events <-chan gameclient.Event) (bool, string, error) {
	for {
		select {
		case <-ctx.Done():
			return false, "", ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return false, "", fmt.Errorf("event stream closed")
			}
			switch ev.Type {
			case "phase_resolved":
				return false, "", nil
			case "game_finished":
				winner, _ := ev.Data["winner"].(string)
				return true, winner, nil
			}
		}
	}
}

func agentModels(agents map[board.Power]*agent.Agent) map[string]string {
	out := make(map[string]string, len(agents))
	for power, a := range agents {
		out[string(power)] = a.Model()
	}
	return out
}
