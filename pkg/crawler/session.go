package crawler

import (
	"strings"

	"sinacrawler/pkg/checkpoint"
)

// State is the pagination controller state
type State int

const (
	StateFetchingContainerID State = iota
	StateFetchingPage
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateFetchingContainerID:
		return "FETCHING_CONTAINER_ID"
	case StateFetchingPage:
		return "FETCHING_PAGE"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// ParseContinueMode accepts y, yes and true in any case
func ParseContinueMode(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "true":
		return true
	default:
		return false
	}
}

// Session is the state of one crawl run. Methods return modified copies.
type Session struct {
	RunID       string
	UID         string
	ContainerID string

	ContinueMode bool
	CurrentPage  int
	// StopDate is the newest date of earlier runs; nil never stops early
	StopDate *string
	// LiveCheckpointUpdates persists the checkpoint after every page
	LiveCheckpointUpdates bool

	Checkpoint checkpoint.Checkpoint
	State      State
}

// NewSession derives the starting point of a run from the stored checkpoint
func NewSession(runID, uid, containerID string, continueMode bool, cp checkpoint.Checkpoint) Session {
	s := Session{
		RunID:        runID,
		UID:          uid,
		ContainerID:  containerID,
		ContinueMode: continueMode,
		Checkpoint:   cp.Clone(),
		State:        StateFetchingPage,
	}

	if continueMode {
		s.CurrentPage = cp.CrawledPages
		s.StopDate = nil
		s.LiveCheckpointUpdates = true
		return s
	}

	s.CurrentPage = 0
	s.StopDate = cloneString(cp.NewestCreateAt)
	s.LiveCheckpointUpdates = s.StopDate == nil
	return s
}

// NextPage advances to the next page to request
func (s Session) NextPage() Session {
	next := s.clone()
	next.CurrentPage++
	next.State = StateFetchingPage
	return next
}

// Stop moves the session to its terminal state
func (s Session) Stop() Session {
	next := s.clone()
	next.State = StateStopped
	return next
}

func (s Session) clone() Session {
	next := s
	next.StopDate = cloneString(s.StopDate)
	next.Checkpoint = s.Checkpoint.Clone()
	return next
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
