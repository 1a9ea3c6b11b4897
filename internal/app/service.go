// Package service provides the core analysis service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	recordqueue "github.com/scoutlab/reefcore/internal/adapters/mq/queue"
	workerpool "github.com/scoutlab/reefcore/internal/adapters/mq/worker"
	"github.com/scoutlab/reefcore/internal/adapters/repository"
	"github.com/scoutlab/reefcore/internal/domain/dedupe"
	"github.com/scoutlab/reefcore/internal/domain/draft"
	"github.com/scoutlab/reefcore/internal/domain/honorroll"
	"github.com/scoutlab/reefcore/internal/domain/model"
	"github.com/scoutlab/reefcore/internal/domain/names"
	"github.com/scoutlab/reefcore/internal/domain/predict"
	"github.com/scoutlab/reefcore/internal/domain/stats"
	"github.com/scoutlab/reefcore/internal/domain/types"
	"github.com/scoutlab/reefcore/pkg/logger"
	"github.com/scoutlab/reefcore/pkg/metrics"
)

// defaultClutch stands in until per-match clutch tracking exists; every
// team starts from the same baseline so it never reorders a draft.
const defaultClutch = 75.0

// Service wires the ingest pipeline to the analysis engines and exposes
// the operations the HTTP layer needs.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry *stats.Registry
	ranking  repository.Store
	deduper  dedupe.Deduper
	queue    recordqueue.Queue
	pool     *workerpool.Pool
	predictE *predict.Engine
	honor    *honorroll.System
	resolver names.Resolver

	// Draft session state
	draftID  string
	selector *draft.Selector

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	maxAlliances  int
	gameConfig    predict.GameConfig
	simIterations int
	simMin        int
	simMax        int
	honorOpts     []honorroll.Option

	// State
	started bool
	stopCh  chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the record queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGameConfig overrides the season scoring configuration.
func WithGameConfig(cfg predict.GameConfig) Option {
	return func(s *Service) {
		s.gameConfig = cfg
	}
}

// WithSimulationBounds sets the default, minimum, and maximum Monte Carlo
// iteration counts.
func WithSimulationBounds(def, minIter, maxIter int) Option {
	return func(s *Service) {
		if def > 0 && minIter > 0 && maxIter >= minIter {
			s.simIterations = def
			s.simMin = minIter
			s.simMax = maxIter
		}
	}
}

// WithMaxAlliances sets the alliance count ceiling for draft sessions.
func WithMaxAlliances(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAlliances = n
		}
	}
}

// WithHonorRollOptions forwards options to the honor roll system.
func WithHonorRollOptions(opts ...honorroll.Option) Option {
	return func(s *Service) {
		s.honorOpts = append(s.honorOpts, opts...)
	}
}

// WithNameResolver sets the team display-name resolver.
func WithNameResolver(r names.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     100_000,
		dedupeSize:    500_000,
		maxAlliances:  8,
		gameConfig:    predict.DefaultGameConfig(),
		simIterations: 1000,
		simMin:        200,
		simMax:        5000,
		resolver:      names.NewStatic(nil),
		stopCh:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting analysis service...")

	s.registry = stats.NewRegistry()
	s.ranking = repository.NewTreapStore(ctx)
	s.deduper = dedupe.NewRing(
		dedupe.WithCapacity(s.dedupeSize),
	)
	s.queue = recordqueue.NewInMemoryQueue(
		recordqueue.WithCapacity(s.queueSize),
		recordqueue.WithBufferSize(s.queueSize),
	)
	s.predictE = predict.NewEngine(
		predict.WithGameConfig(s.gameConfig),
		predict.WithIterationBounds(s.simIterations, s.simMin, s.simMax),
	)
	s.honor = honorroll.NewSystem(s.honorOpts...)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.registry, s.ranking)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping analysis service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}

	if closer, ok := s.ranking.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
}

// SeenAndRecord atomically checks whether a record id was seen and records
// it if not. Returns true when the record was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordRecordDuplicate()
	}
	return seen
}

// Unrecord forgets a record ID so the record can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a scouting record for asynchronous processing. Returns
// false when the queue rejected it.
func (s *Service) Enqueue(ctx context.Context, rec model.MatchRecord) bool {
	ok := s.queue.Enqueue(ctx, rec)
	if ok {
		metrics.RecordRecordIngested()
	}
	return ok
}

// TopN returns the top N ranking entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.ranking.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	return s.toAPIEntries(entries), nil
}

// Rank returns the rank and score for a team.
func (s *Service) Rank(ctx context.Context, team int) (types.Entry, error) {
	entry, err := s.ranking.Rank(ctx, team)
	if err != nil {
		return types.Entry{}, err
	}
	return s.toAPIEntry(entry), nil
}

// TeamProfile returns the full performance profile and ranking entry for
// a team.
func (s *Service) TeamProfile(ctx context.Context, team int) (stats.Profile, types.Entry, error) {
	profile, err := s.registry.Profile(ctx, team)
	if err != nil {
		return stats.Profile{}, types.Entry{}, err
	}
	entry, err := s.ranking.Rank(ctx, team)
	if err != nil {
		return stats.Profile{}, types.Entry{}, err
	}
	return profile, s.toAPIEntry(entry), nil
}

func (s *Service) toAPIEntry(e repository.Entry) types.Entry {
	return types.Entry{
		Rank:      e.Rank,
		Team:      e.Team,
		Name:      s.resolver.Name(e.Team),
		Score:     e.Score,
		Matches:   e.Matches,
		Valuation: e.Valuation,
	}
}

func (s *Service) toAPIEntries(entries []repository.Entry) []types.Entry {
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = s.toAPIEntry(e)
	}
	return out
}

// Predict runs a match prediction for the given alliances. A zero seed
// draws one from the clock; a fixed seed makes Monte Carlo runs
// reproducible.
func (s *Service) Predict(ctx context.Context, red, blue []int, mode string, iterations int, seed int64) (predict.Prediction, error) {
	m, err := predict.ParseMode(mode)
	if err != nil {
		return predict.Prediction{}, err
	}

	redProfiles, err := s.profilesFor(ctx, red)
	if err != nil {
		return predict.Prediction{}, err
	}
	blueProfiles, err := s.profilesFor(ctx, blue)
	if err != nil {
		return predict.Prediction{}, err
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start := time.Now()
	pred, err := s.predictE.Predict(ctx, redProfiles, blueProfiles, m, iterations, rng)
	if err != nil {
		metrics.RecordPredictionError()
		return predict.Prediction{}, err
	}
	metrics.RecordPrediction(string(m))
	metrics.RecordPredictionDuration(string(m), float64(time.Since(start).Milliseconds()))
	if pred.Iterations > 0 {
		metrics.RecordSimulationTrials(pred.Iterations)
	}
	return pred, nil
}

func (s *Service) profilesFor(ctx context.Context, teams []int) ([]stats.Profile, error) {
	profiles := make([]stats.Profile, 0, len(teams))
	for _, team := range teams {
		p, err := s.registry.Profile(ctx, team)
		if err != nil {
			return nil, fmt.Errorf("team %d: %w", team, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// StartDraft opens a new draft session seeded from the current ranking and
// returns its session ID. Any previous session is discarded.
func (s *Service) StartDraft(ctx context.Context, maxAlliances int) (string, error) {
	if maxAlliances < 1 {
		maxAlliances = s.maxAlliances
	}

	entries, err := s.ranking.All(ctx)
	if err != nil {
		return "", err
	}

	teams := make([]draft.Team, 0, len(entries))
	for _, e := range entries {
		profile, perr := s.registry.Profile(ctx, e.Team)
		if perr != nil {
			continue
		}
		teams = append(teams, s.draftTeam(e, profile))
	}

	selector, err := draft.NewSelector(teams, draft.WithMaxAlliances(maxAlliances))
	if err != nil {
		metrics.RecordDraftError()
		return "", err
	}

	id := uuid.NewString()

	s.mu.Lock()
	s.draftID = id
	s.selector = selector
	s.mu.Unlock()

	metrics.RecordDraftAction("start")
	s.logger.Info(ctx, "draft session started",
		logger.String("sessionID", id),
		logger.Int("teams", len(teams)),
		logger.Int("alliances", selector.AllianceCount()),
	)
	return id, nil
}

// draftTeam projects a ranking entry and stats profile into a draftable
// team.
func (s *Service) draftTeam(e repository.Entry, p stats.Profile) draft.Team {
	consistency := math.Max(0, math.Min(100, 100-p.OverallStd))
	return draft.Team{
		Number:      e.Team,
		Name:        s.resolver.Name(e.Team),
		Rank:        e.Rank,
		AutoEPA:     p.AutoAvg,
		TeleopEPA:   p.TeleopAvg,
		EndgameEPA:  p.EndgameAvg,
		Defense:     p.DefenseRate >= 0.5,
		DefenseRate: p.DefenseRate,
		AlgaeScore:  p.TeleopProcessor + p.TeleopNet,
		DeathRate:   p.DeathRate,
		Consistency: consistency,
		Clutch:      defaultClutch,
		Valuation:   p.Valuation,
	}
}

// draftSelector returns the active selector or ErrNoDraft.
func (s *Service) draftSelector() (*draft.Selector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selector == nil {
		return nil, ErrNoDraft
	}
	return s.selector, nil
}

// DraftSessionID returns the active draft session ID, or "".
func (s *Service) DraftSessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draftID
}

// DraftSetCaptain assigns or clears an alliance captain.
func (s *Service) DraftSetCaptain(ctx context.Context, alliance, team int) error {
	sel, err := s.draftSelector()
	if err != nil {
		return err
	}
	if err := sel.SetCaptain(alliance, team); err != nil {
		metrics.RecordDraftError()
		return err
	}
	metrics.RecordDraftAction("set_captain")
	return nil
}

// DraftSetPick assigns or clears a pick slot.
func (s *Service) DraftSetPick(ctx context.Context, alliance int, slot string, team int) error {
	sel, err := s.draftSelector()
	if err != nil {
		return err
	}
	ps := draft.PickSlot(slot)
	if !ps.Valid() {
		return fmt.Errorf("slot %q: %w", slot, draft.ErrInvalidAssignment)
	}
	if err := sel.SetPick(alliance, ps, team); err != nil {
		metrics.RecordDraftError()
		return err
	}
	metrics.RecordDraftAction("set_pick")
	return nil
}

// DraftAutoOptimize completes the draft table in snake order.
func (s *Service) DraftAutoOptimize(ctx context.Context) error {
	sel, err := s.draftSelector()
	if err != nil {
		return err
	}
	sel.AutoOptimize()
	metrics.RecordDraftAction("auto_optimize")
	return nil
}

// DraftTable returns the current draft table rows.
func (s *Service) DraftTable(ctx context.Context) ([]draft.TableRow, error) {
	sel, err := s.draftSelector()
	if err != nil {
		return nil, err
	}
	return sel.Table(), nil
}

// DraftAvailableCaptains lists teams assignable as captain of an alliance.
func (s *Service) DraftAvailableCaptains(ctx context.Context, alliance int) ([]draft.Team, error) {
	sel, err := s.draftSelector()
	if err != nil {
		return nil, err
	}
	return sel.AvailableCaptains(alliance)
}

// DraftAvailableTeams lists teams draftable by the alliance whose captain
// holds the given rank, sorted for the slot.
func (s *Service) DraftAvailableTeams(ctx context.Context, captainRank int, slot string) ([]draft.Team, error) {
	sel, err := s.draftSelector()
	if err != nil {
		return nil, err
	}
	ps := draft.PickSlot(slot)
	if !ps.Valid() {
		return nil, fmt.Errorf("slot %q: %w", slot, draft.ErrInvalidAssignment)
	}
	return sel.AvailableTeams(captainRank, ps)
}

// DraftReset clears all assignments and re-seeds captains by rank.
func (s *Service) DraftReset(ctx context.Context) error {
	sel, err := s.draftSelector()
	if err != nil {
		return err
	}
	sel.Reset()
	metrics.RecordDraftAction("reset")
	return nil
}

// HonorRollSetPit records pit-scouting scores for a team.
func (s *Service) HonorRollSetPit(ctx context.Context, team int, rec *model.PitRecord) error {
	return s.honor.SetPit(ctx, team, rec)
}

// HonorRollSetEvent records during-event conduct scores for a team.
func (s *Service) HonorRollSetEvent(ctx context.Context, team int, organization, collaboration float64) error {
	return s.honor.SetEvent(ctx, team, organization, collaboration)
}

// HonorRollSetCompetencies replaces the competency checklist for a team.
func (s *Service) HonorRollSetCompetencies(ctx context.Context, team int, c honorroll.Competencies, sub honorroll.Subcompetencies) error {
	return s.honor.SetCompetencies(ctx, team, c, sub)
}

// HonorRollAddReport files a conduct report against a team.
func (s *Service) HonorRollAddReport(ctx context.Context, team int, typ honorroll.ReportType) error {
	return s.honor.AddBehaviorReport(ctx, team, typ)
}

// HonorRollRanking refreshes match-phase inputs from the stats model and
// returns the curved ranking.
func (s *Service) HonorRollRanking(ctx context.Context) ([]honorroll.Result, error) {
	profiles, err := s.registry.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		p := &profiles[i]
		if err := s.honor.SetMatchPhases(ctx, p.TeamNumber, p.AutoAvg, p.TeleopAvg, p.EndgameAvg, p.OverallAvg); err != nil {
			return nil, err
		}
	}
	metrics.RecordHonorRollRanking()
	return s.honor.Ranking(ctx), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	out := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		teamCount := s.ranking.Count(ctx)

		out["queueLength"] = queueLen
		out["totalTeams"] = teamCount
		out["scoutedTeams"] = s.registry.TeamCount(ctx)
		out["dedupeEntries"] = s.deduper.Size()
		if s.draftID != "" {
			out["draftSessionID"] = s.draftID
		}

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTeamCount(teamCount)
	}

	return out
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
