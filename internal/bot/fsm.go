package bot

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/kvartplata/kvartplata/internal/utility"
)

// State is one step of a multi-turn dialogue. Transitions happen only on
// valid input; anything else re-prompts without moving.
type State int

const (
	StateIdle State = iota
	StateChoosingCharge
	StateEnteringAmount
	StateConfirming
	StateChoosingUtility
	StateEnteringReading
)

// conversation is the per-user dialogue memory, keyed by telegram user ID.
type conversation struct {
	State       State
	ChargeID    snowflake.ID
	Amount      float64
	ReceiptPath string
	UtilityType utility.Type
}

type fsm struct {
	mu            sync.Mutex
	conversations map[int64]*conversation
}

func newFSM() *fsm {
	return &fsm{conversations: make(map[int64]*conversation)}
}

func (f *fsm) get(userID int64) *conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[userID]
	if !ok {
		conv = &conversation{State: StateIdle}
		f.conversations[userID] = conv
	}
	return conv
}

func (f *fsm) clear(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.conversations, userID)
}
