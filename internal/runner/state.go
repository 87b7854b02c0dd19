// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package runner

import "fmt"

// Persisted property keys. A cycle is in progress exactly when KeyRunning
// holds "true".
const (
	KeyIndex      = "PROCESS_INDEX"
	KeySourceList = "PROCESS_SOURCE_LIST"
	KeyRunning    = "PROCESS_IS_RUNNING"
)

// Phase is the lifecycle position of the cleaning cycle.
type Phase string

const (
	// PhaseNotStarted means no cycle state exists.
	PhaseNotStarted Phase = "not_started"

	// PhaseInProgress means items remain at or after the cursor.
	PhaseInProgress Phase = "in_progress"

	// PhaseCompleting means every item was visited but the state was not
	// cleared yet. The next invocation clears it.
	PhaseCompleting Phase = "completing"
)

// RunState is the cycle state derived from the persisted properties.
type RunState struct {
	Phase  Phase `json:"phase" yaml:"phase"`
	Cursor int   `json:"cursor" yaml:"cursor"`
	Total  int   `json:"total" yaml:"total"`
}

func (s RunState) String() string {
	switch s.Phase {
	case PhaseInProgress:
		return fmt.Sprintf("in progress: %d/%d processed", s.Cursor, s.Total)
	case PhaseCompleting:
		return fmt.Sprintf("completing: %d/%d processed, state not yet cleared", s.Cursor, s.Total)
	}
	return "not started"
}

// Remaining returns the number of items not yet visited.
func (s RunState) Remaining() int {
	return max(s.Total-s.Cursor, 0)
}
