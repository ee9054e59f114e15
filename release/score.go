package release

import "time"

// HardReject removes a candidate from primary selection entirely.
const HardReject = -1000

// Score rates how plausible a candidate's first-seen timestamp is relative
// to the game's official release date. Recent is better; anything reported
// more than 30 days before release or more than four years after is junk.
func Score(releaseDate, seen *time.Time) int {
	if releaseDate == nil || seen == nil {
		return 0
	}
	deltaDays := int(seen.Sub(*releaseDate).Hours() / 24)

	switch {
	case deltaDays < -30:
		return HardReject
	case deltaDays <= 90:
		return 200
	case deltaDays <= 365:
		return 150
	case deltaDays <= 730:
		return 100
	case deltaDays <= 1095:
		return 50
	case deltaDays <= 1460:
		return 25
	default:
		return HardReject
	}
}
