// Package ads models the two full-screen ad slots of the app: their load
// state machine, the SDK event vocabulary and the show rate limit.
package ads

import "fmt"

// Kind identifies an ad slot
type Kind string

const (
	AppOpen              Kind = "app_open"
	RewardedInterstitial Kind = "rewarded_interstitial"
)

// EventType enumerates the callbacks the ad SDK emits
type EventType int

const (
	EventLoaded EventType = iota + 1
	EventEarnedReward
	EventClosed
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventLoaded:
		return "loaded"
	case EventEarnedReward:
		return "earned_reward"
	case EventClosed:
		return "closed"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// Reward is the payload the SDK attaches to an EarnedReward event
type Reward struct {
	Type   string `json:"type"`
	Amount int    `json:"amount"`
}

// Event is a single SDK callback. Err is set for EventError, Reward for
// EventEarnedReward.
type Event struct {
	Type   EventType
	Err    error
	Reward *Reward
}

// Listener receives SDK events for one ad instance
type Listener func(Event)

// Ad is the boundary to one native ad instance. Load and Show only issue
// commands; outcomes arrive asynchronously through listeners.
type Ad interface {
	UnitID() string
	Load() error
	Show() error
	// AddListener registers l and returns a function that removes it.
	AddListener(l Listener) (remove func())
}

// RewardResult is the outcome of one rewarded show session
type RewardResult struct {
	Earned bool    `json:"earned"`
	Reward *Reward `json:"reward"`
}
