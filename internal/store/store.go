// Package store provides the process-wide job registry and its snapshot
// persistence. The store is the single source of truth for job state; all
// reads return consistent copies and all mutations happen under its lock.
package store

import (
	"log"
	"sort"
	"sync"

	"github.com/jonathan/podcast-studio/internal/types"
)

// Store maps job identifiers to job records. Optionally backed by a
// snapshot store so completed jobs survive a process restart.
type Store struct {
	mu        sync.RWMutex
	jobs      map[string]*types.Job
	snapshots *SnapshotStore
}

// New creates an empty store. snapshots may be nil to disable persistence.
func New(snapshots *SnapshotStore) *Store {
	return &Store{
		jobs:      make(map[string]*types.Job),
		snapshots: snapshots,
	}
}

// Create registers a new job record. Identifiers are never reused, so an
// existing record with the same id is a programming error and is replaced.
func (s *Store) Create(job *types.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job.Clone()
}

// Get returns a copy of the job, lazily reloading it from its persisted
// snapshot when not in memory.
func (s *Store) Get(id string) (*types.Job, bool) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	if ok {
		defer s.mu.RUnlock()
		return job.Clone(), true
	}
	s.mu.RUnlock()

	if s.snapshots == nil {
		return nil, false
	}
	snap, err := s.snapshots.Load(id)
	if err != nil || snap == nil {
		if err != nil {
			log.Printf("Warning: failed to load snapshot for job %s: %v", id, err)
		}
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another reader may have reloaded concurrently; keep the first copy.
	if existing, ok := s.jobs[id]; ok {
		return existing.Clone(), true
	}
	restored := types.JobFromSnapshot(id, snap)
	s.jobs[id] = restored
	return restored.Clone(), true
}

// Update applies fn to the job record under the store lock and returns a
// copy of the result. Returns false when the job is unknown.
func (s *Store) Update(id string, fn func(*types.Job)) (*types.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	fn(job)
	return job.Clone(), true
}

// Delete removes the job from memory only; a persisted snapshot, if any,
// remains on disk.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	delete(s.jobs, id)
	return ok
}

// List returns copies of all in-memory jobs.
func (s *Store) List() []*types.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.Clone())
	}
	return out
}

// ListSaved returns saved jobs, most recently saved first, optionally
// filtered by category. Persisted jobs not yet in memory are restored via
// read-through so saved episodes remain listed across restarts.
func (s *Store) ListSaved(category types.Category) []*types.Job {
	matches := func(job *types.Job) bool {
		return job.Saved && (category == "" || job.Category == category)
	}

	seen := make(map[string]bool)
	saved := make([]*types.Job, 0)
	for _, job := range s.List() {
		// In-memory records are authoritative even when not saved.
		seen[job.ID] = true
		if matches(job) {
			saved = append(saved, job)
		}
	}

	if s.snapshots != nil {
		ids, err := s.snapshots.List()
		if err != nil {
			log.Printf("Warning: failed to enumerate snapshots: %v", err)
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			if job, ok := s.Get(id); ok && matches(job) {
				saved = append(saved, job)
			}
		}
	}

	sort.Slice(saved, func(i, k int) bool {
		return saved[i].SavedAt.After(saved[k].SavedAt)
	})
	return saved
}

// Persist writes the job's snapshot. Best-effort: failures are logged,
// never surfaced to the caller.
func (s *Store) Persist(id string) {
	if s.snapshots == nil {
		return
	}
	job, ok := s.Get(id)
	if !ok {
		return
	}
	if err := s.snapshots.Save(id, job.ToSnapshot()); err != nil {
		log.Printf("Warning: failed to persist snapshot for job %s: %v", id, err)
	}
}

// RemoveSnapshot deletes the job's persisted snapshot file, if present.
func (s *Store) RemoveSnapshot(id string) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Delete(id); err != nil {
		log.Printf("Warning: failed to delete snapshot for job %s: %v", id, err)
	}
}
