package release

import (
	"sort"
	"time"
)

// Tier describes where a release originated on the cracking food chain.
type Tier string

const (
	TierScene  Tier = "Scene"
	TierRepack Tier = "Repack"
	TierP2P    Tier = "P2P"
)

// Rank orders tiers for primary selection. Scene beats Repack beats P2P.
func (t Tier) Rank() int {
	switch t {
	case TierScene:
		return 2
	case TierRepack:
		return 1
	default:
		return 0
	}
}

// CrackedStatus maps a tier to the game status it produces when a primary
// release is found. Only scene releases get the Scene label.
func (t Tier) CrackedStatus() string {
	if t == TierScene {
		return "Cracked (Scene)"
	}
	return "Cracked (P2P)"
}

// Kind is the classifier verdict for one raw release name.
type Kind int

const (
	KindNoise Kind = iota
	KindBaseGame
	KindAddOn
)

func (k Kind) String() string {
	switch k {
	case KindBaseGame:
		return "base"
	case KindAddOn:
		return "addon"
	default:
		return "noise"
	}
}

// Candidate is one classified release under consideration for a single
// reconciliation pass. Never persisted, never shared across games.
type Candidate struct {
	RawName string
	Source  string
	Tier    Tier
	Seen    *time.Time

	Kind      Kind
	AddonType string // Update, DLC, Fix, Trainer; set only for KindAddOn

	// PlatformLocked marks a base-game release carrying a non-PC platform
	// token. Locked candidates never win primary but are kept as alternatives.
	PlatformLocked bool

	Score int
}

// RankCandidates orders base-game candidates best-first: PC releases before
// platform-locked ones, then by relevancy score, then by tier.
func RankCandidates(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.PlatformLocked != b.PlatformLocked {
			return !a.PlatformLocked
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Tier.Rank() > b.Tier.Rank()
	})
}
