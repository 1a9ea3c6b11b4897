// Package repository defines the seed ranking store interface and errors.
package repository

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scoutlab/reefcore/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then team number ASC (deterministic). The BST
// comparator treats "less" as "ranks earlier", so an in-order traversal
// produces the seed ranking from best to worst.

// scoreScale controls fixed-point scaling from float64. Twelve decimal
// places keep averages with long fractional parts stable under the
// comparator.
const scoreScale = 1_000_000_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	if math.IsInf(x, 1) {
		return scoreFP(math.MaxInt64)
	}
	if math.IsInf(x, -1) {
		return scoreFP(math.MinInt64)
	}

	scaled := x * scoreScale
	if scaled > float64(math.MaxInt64) {
		return scoreFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(scaled))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

// record stores the fixed-point score plus display metadata for a team.
type record struct {
	score     scoreFP
	matches   int
	valuation float64
}

// Snapshot is an immutable view of the ranking published periodically for
// lock-free reads.
type Snapshot struct {
	RankByTeam  map[int]int
	ScoreByTeam map[int]float64

	// TopCache holds the first topCacheSize entries in rank order.
	TopCache []Entry
}

// treap node
type node struct {
	team  int
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aScore, aTeam) ranks earlier than (bScore, bTeam).
func less(aScore scoreFP, aTeam int, bScore scoreFP, bTeam int) bool {
	if aScore != bScore {
		return aScore > bScore // higher score ranks earlier
	}
	return aTeam < bTeam // tie-breaker by team number asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// scoreToPriority keeps higher scores near the treap root. The offset
// shifts negative fixed-point scores into the unsigned range.
func scoreToPriority(score scoreFP) uint64 {
	const offset = uint64(1) << 63
	return uint64(score) + offset
}

func insert(n *node, team int, score scoreFP) *node {
	if n == nil {
		return &node{team: team, score: score, prio: scoreToPriority(score), size: 1}
	}
	if less(score, team, n.score, n.team) {
		n.left = insert(n.left, team, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, team, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, team int, score scoreFP) *node {
	if n == nil {
		return nil
	}
	if score == n.score && team == n.team {
		// Merge children by rotating the higher priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, team, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, team, score)
		}
	} else if less(score, team, n.score, n.team) {
		n.left = deleteNode(n.left, team, score)
	} else {
		n.right = deleteNode(n.right, team, score)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, records map[int]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}

	collectTopN(n.left, limit, records, out)

	if len(*out) < limit {
		if rec, exists := records[n.team]; exists {
			*out = append(*out, Entry{Team: n.team, Score: toFloat(rec.score), Matches: rec.matches, Valuation: rec.valuation})
		}
	}

	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

// collectAll appends all entries in rank order.
func collectAll(n *node, records map[int]record, out *[]Entry) {
	if n == nil {
		return
	}
	collectAll(n.left, records, out)
	if rec, ok := records[n.team]; ok {
		*out = append(*out, Entry{Team: n.team, Score: toFloat(rec.score), Matches: rec.matches, Valuation: rec.valuation})
	}
	collectAll(n.right, records, out)
}

type TreapStore struct {
	mu     sync.RWMutex
	root   *node
	byTeam map[int]record

	snapshotInterval time.Duration
	metricsInterval  time.Duration
	topCacheSize     int

	snapshot atomic.Pointer[Snapshot]

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewTreapStore constructs a treap store and starts its background
// snapshot and metrics goroutines. Close stops them.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		snapshotInterval: 1 * time.Second,
		metricsInterval:  5 * time.Second,
		topCacheSize:     500,
		byTeam:           make(map[int]record),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startPeriodicSnapshots(ctx)
	s.startMetricsUpdater(ctx)

	return s
}

func (s *TreapStore) startPeriodicSnapshots(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.snapshotInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.publishSnapshot()
			}
		}
	}()
}

func (s *TreapStore) publishSnapshot() {
	start := time.Now()
	s.mu.RLock()
	s.publishSnapshotLocked()
	s.mu.RUnlock()

	ms := float64(time.Since(start).Milliseconds())
	metrics.RecordStoreSnapshotDuration(ms)
	metrics.UpdateStoreSnapshotLastUnix(float64(time.Now().Unix()))
	metrics.IncrementStoreSnapshotCount()
}

// publishSnapshotLocked rebuilds and publishes a snapshot. Caller holds at
// least a read lock.
func (s *TreapStore) publishSnapshotLocked() {
	topCache := make([]Entry, 0, s.topCacheSize)
	collectTopN(s.root, s.topCacheSize, s.byTeam, &topCache)

	allEntries := make([]Entry, 0, len(s.byTeam))
	collectAll(s.root, s.byTeam, &allEntries)
	assignRanksWithTies(allEntries)

	rankByTeam := make(map[int]int, len(allEntries))
	scoreByTeam := make(map[int]float64, len(allEntries))
	for _, entry := range allEntries {
		rankByTeam[entry.Team] = entry.Rank
		scoreByTeam[entry.Team] = entry.Score
	}

	for i := range topCache {
		if rank, exists := rankByTeam[topCache[i].Team]; exists {
			topCache[i].Rank = rank
		}
	}

	s.snapshot.Store(&Snapshot{
		RankByTeam:  rankByTeam,
		ScoreByTeam: scoreByTeam,
		TopCache:    topCache,
	})
}

// LatestSnapshot returns the most recently published snapshot, or nil when
// none has been published yet.
func (s *TreapStore) LatestSnapshot() *Snapshot {
	return s.snapshot.Load()
}

// Close stops the background goroutines.
func (s *TreapStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// SetScore implements Store.SetScore in O(log n) expected time.
func (s *TreapStore) SetScore(ctx context.Context, team int, score float64) (bool, error) {
	return s.SetScoreWithMeta(ctx, team, score, 0, 0)
}

// SetScoreWithMeta implements Store.SetScoreWithMeta. Unlike a
// best-score leaderboard, the ranking always reflects the latest value:
// a falling average reorders the treap just like a rising one.
func (s *TreapStore) SetScoreWithMeta(ctx context.Context, team int, score float64, matches int, valuation float64) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	if team < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_team")
		return false, ErrInvalidTeam
	}

	ns := toFixedPoint(score)
	isNewTeam := false

	s.mu.Lock()
	old, ok := s.byTeam[team]
	if ok {
		if ns == old.score && matches == old.matches && valuation == old.valuation {
			s.mu.Unlock()
			return false, nil
		}
		if ns != old.score {
			s.root = deleteNode(s.root, team, old.score)
			s.root = insert(s.root, team, ns)
		}
	} else {
		isNewTeam = true
		s.root = insert(s.root, team, ns)
	}
	s.byTeam[team] = record{score: ns, matches: matches, valuation: valuation}
	s.mu.Unlock()

	if isNewTeam {
		metrics.UpdateTeamCount(s.Count(ctx))
	}
	metrics.RecordRankingUpdate()
	return true, nil
}

// Rank returns the current rank and score for a team.
func (s *TreapStore) Rank(ctx context.Context, team int) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byTeam[team]; !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	allEntries := make([]Entry, 0, len(s.byTeam))
	collectAll(s.root, s.byTeam, &allEntries)
	sortEntries(allEntries)
	assignRanksWithTies(allEntries)

	for _, entry := range allEntries {
		if entry.Team == team {
			return entry, nil
		}
	}

	return Entry{}, ErrNotFound
}

// TopN returns the top N entries ordered by score desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, s.byTeam, &out)
	assignRanksWithTies(out)
	return out, nil
}

// All returns every entry in rank order.
func (s *TreapStore) All(ctx context.Context) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.byTeam))
	collectAll(s.root, s.byTeam, &out)
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the total number of ranked teams.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byTeam)
}

// Clear drops all entries.
func (s *TreapStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.root = nil
	s.byTeam = make(map[int]record)
	s.mu.Unlock()
	metrics.UpdateTeamCount(0)
}

func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateTeamCount(s.Count(ctx))
			}
		}
	}()
}

// sortEntries orders entries by score desc, team number asc, matching the
// treap comparator.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Team < entries[j].Team
	})
}

// assignRanksWithTies assigns consecutive ranks; teams with equal scores
// share a rank.
func assignRanksWithTies(entries []Entry) {
	if len(entries) == 0 {
		return
	}

	currentRank := 1
	for i := 0; i < len(entries); i++ {
		entries[i].Rank = currentRank

		sameScoreCount := 1
		for j := i + 1; j < len(entries) && entries[j].Score == entries[i].Score; j++ {
			entries[j].Rank = currentRank
			sameScoreCount++
		}

		currentRank++
		i += sameScoreCount - 1
	}
}
