// Package memory holds a mutex-guarded in-process store implementing every
// repository interface the rating engine needs. It backs the service tests
// and mirrors the transactional behavior of the postgres layer: correction
// batches apply under one lock acquisition.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/playrank/inhouse-ratings/internal/domain/correction"
	"github.com/playrank/inhouse-ratings/internal/domain/match"
	"github.com/playrank/inhouse-ratings/internal/domain/ratinghistory"
	"github.com/playrank/inhouse-ratings/internal/domain/season"
	"github.com/playrank/inhouse-ratings/internal/domain/seasonstats"
)

type statsKey struct {
	seasonNumber int
	playerID     string
}

type snapshotKey struct {
	playerID string
	matchID  int64
}

type storedSnapshot struct {
	snapshot ratinghistory.Snapshot
	// seq emulates creation time: it is assigned once, on first insert,
	// and survives upserts the way created_at does in postgres.
	seq int64
}

type Store struct {
	mu        sync.RWMutex
	seasons   map[int]season.Season
	matches   map[int64]match.Match
	snapshots map[snapshotKey]storedSnapshot
	stats     map[statsKey]seasonstats.PlayerStats
	seq       int64
}

func NewStore() *Store {
	return &Store{
		seasons:   make(map[int]season.Season),
		matches:   make(map[int64]match.Match),
		snapshots: make(map[snapshotKey]storedSnapshot),
		stats:     make(map[statsKey]seasonstats.PlayerStats),
	}
}

// AddSeason seeds a season.
func (s *Store) AddSeason(item season.Season) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seasons[item.Number] = item
}

// AddMatch seeds a match with its participations.
func (s *Store) AddMatch(item match.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[item.ID] = item
}

func (s *Store) GetByNumber(_ context.Context, number int) (season.Season, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.seasons[number]
	return item, ok, nil
}

func (s *Store) GetActive(_ context.Context) (season.Season, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := season.Season{}
	found := false
	for _, item := range s.seasons {
		if !item.Active {
			continue
		}
		if !found || item.Number > best.Number {
			best = item
			found = true
		}
	}
	return best, found, nil
}

func (s *Store) GetByID(_ context.Context, matchID int64) (match.Match, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.matches[matchID]
	return item, ok, nil
}

func (s *Store) GetLatestFinished(_ context.Context, seasonNumber int) (match.Match, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.seasonMatchesLocked(seasonNumber)
	if len(matches) == 0 {
		return match.Match{}, false, nil
	}
	return matches[len(matches)-1], true, nil
}

func (s *Store) ListFinishedBySeason(_ context.Context, seasonNumber int) ([]match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.seasonMatchesLocked(seasonNumber), nil
}

func (s *Store) ListPlayerOutcomes(_ context.Context, seasonNumber int, playerID string) ([]match.PlayerOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]match.PlayerOutcome, 0)
	for _, m := range s.seasonMatchesLocked(seasonNumber) {
		for _, p := range m.Participants {
			if p.PlayerID != playerID {
				continue
			}
			out = append(out, match.PlayerOutcome{
				MatchID: m.ID,
				EndedAt: m.EndedAt,
				Side:    p.Side,
				Winner:  m.Winner,
			})
		}
	}
	return out, nil
}

func (s *Store) CountPlayerParticipations(_ context.Context, seasonNumber int, playerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.matches {
		if m.SeasonNumber != seasonNumber {
			continue
		}
		for _, p := range m.Participants {
			if p.PlayerID == playerID {
				count++
			}
		}
	}
	return count, nil
}

func (s *Store) UpsertSnapshots(_ context.Context, items []ratinghistory.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		s.upsertSnapshotLocked(item)
	}
	return nil
}

func (s *Store) GetLatestExcluding(_ context.Context, seasonNumber int, playerID string, excludeMatchID int64) (ratinghistory.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := storedSnapshot{}
	found := false
	for _, stored := range s.snapshots {
		snap := stored.snapshot
		if snap.SeasonNumber != seasonNumber || snap.PlayerID != playerID || snap.MatchID == excludeMatchID {
			continue
		}
		if !found || stored.seq > best.seq {
			best = stored
			found = true
		}
	}
	return best.snapshot, found, nil
}

func (s *Store) GetByPlayer(_ context.Context, seasonNumber int, playerID string) (seasonstats.PlayerStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.stats[statsKey{seasonNumber: seasonNumber, playerID: playerID}]
	return item, ok, nil
}

func (s *Store) ListBySeason(_ context.Context, seasonNumber int) ([]seasonstats.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]seasonstats.PlayerStats, 0)
	for key, item := range s.stats {
		if key.seasonNumber == seasonNumber {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (s *Store) UpsertMany(_ context.Context, items []seasonstats.PlayerStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		s.stats[statsKey{seasonNumber: item.SeasonNumber, playerID: item.PlayerID}] = item
	}
	return nil
}

func (s *Store) RevertMatch(_ context.Context, write correction.RevertWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteMatchRowsLocked(write.Match.ID)
	for _, item := range write.RestoredStats {
		s.stats[statsKey{seasonNumber: item.SeasonNumber, playerID: item.PlayerID}] = item
	}
	for _, playerID := range write.RemovedStatsPlayerIDs {
		delete(s.stats, statsKey{seasonNumber: write.Match.SeasonNumber, playerID: playerID})
	}
	return nil
}

func (s *Store) ReplaceMatchOutcome(_ context.Context, write correction.ReplaceWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteMatchRowsLocked(write.Match.ID)
	s.matches[write.Match.ID] = write.Match
	for _, item := range write.Snapshots {
		s.upsertSnapshotLocked(item)
	}
	for _, item := range write.UpdatedStats {
		s.stats[statsKey{seasonNumber: item.SeasonNumber, playerID: item.PlayerID}] = item
	}
	return nil
}

// AllSnapshots returns every stored snapshot in creation order, for test
// inspection.
func (s *Store) AllSnapshots() []ratinghistory.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := make([]storedSnapshot, 0, len(s.snapshots))
	for _, item := range s.snapshots {
		stored = append(stored, item)
	}
	sort.SliceStable(stored, func(i, j int) bool {
		return stored[i].seq < stored[j].seq
	})

	out := make([]ratinghistory.Snapshot, 0, len(stored))
	for _, item := range stored {
		out = append(out, item.snapshot)
	}
	return out
}

func (s *Store) seasonMatchesLocked(seasonNumber int) []match.Match {
	out := make([]match.Match, 0)
	for _, m := range s.matches {
		if m.SeasonNumber == seasonNumber {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EndedAt.Equal(out[j].EndedAt) {
			return out[i].EndedAt.Before(out[j].EndedAt)
		}
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) upsertSnapshotLocked(item ratinghistory.Snapshot) {
	key := snapshotKey{playerID: item.PlayerID, matchID: item.MatchID}
	if existing, ok := s.snapshots[key]; ok {
		existing.snapshot.Rating = item.Rating
		s.snapshots[key] = existing
		return
	}
	s.seq++
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	s.snapshots[key] = storedSnapshot{snapshot: item, seq: s.seq}
}

func (s *Store) deleteMatchRowsLocked(matchID int64) {
	delete(s.matches, matchID)
	for key := range s.snapshots {
		if key.matchID == matchID {
			delete(s.snapshots, key)
		}
	}
}
