package release

import (
	"strings"
	"time"

	"github.com/moistari/rls"
)

// addonKeywords maps release tokens to add-on types. Token checks are
// exact, so CRACKFIX and FIX are distinct entries; table order breaks ties
// when a name carries more than one keyword.
var addonKeywords = []struct {
	Keyword string
	Type    string
}{
	{"UPDATE", "Update"},
	{"DLC", "DLC"},
	{"PATCH", "Update"},
	{"CRACKFIX", "Fix"},
	{"FIX", "Fix"},
	{"TRAINER", "Trainer"},
}

// platformExclusions are non-PC platform markers. Anything carrying one is
// either rejected (add-ons) or locked out of primary selection (base games).
var platformExclusions = map[string]struct{}{
	"MACOS":  {},
	"OSX":    {},
	"LINUX":  {},
	"NSW":    {},
	"SWITCH": {},
	"PS4":    {},
	"PS5":    {},
	"XBOX":   {},
}

// mediaNoise are video/audio encoding markers. Games sharing a title with a
// movie or show surface these from the general trackers constantly.
var mediaNoise = map[string]struct{}{
	"X264":   {},
	"X265":   {},
	"H264":   {},
	"H265":   {},
	"HEVC":   {},
	"XVID":   {},
	"BLURAY": {},
	"BDRIP":  {},
	"WEBRIP": {},
	"HDTV":   {},
	"DVDRIP": {},
	"720P":   {},
	"1080P":  {},
	"2160P":  {},
}

// repackGroups force tier Repack when a general aggregator indexes a known
// repacker without a tier hint.
var repackGroups = map[string]struct{}{
	"FITGIRL":  {},
	"DODI":     {},
	"ELAMIGOS": {},
	"KAOSKREW": {},
	"XATAB":    {},
}

func upperTokens(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for tok := range Tokens(raw) {
		set[strings.ToUpper(tok)] = struct{}{}
	}
	return set
}

func containsAny(set map[string]struct{}, table map[string]struct{}) bool {
	for tok := range set {
		if _, ok := table[tok]; ok {
			return true
		}
	}
	return false
}

// Classify decides what one raw release name is: a base-game candidate, an
// add-on candidate, or noise to discard. Tier and timestamp carry through
// from the adapter, with the repack-group override applied on top.
func Classify(raw, source string, tier Tier, seen *time.Time) Candidate {
	cand := Candidate{RawName: raw, Source: source, Tier: tier, Seen: seen}

	toks := upperTokens(raw)
	parsed := rls.ParseString(raw)

	// Non-game media leaks in from general trackers by title overlap.
	switch parsed.Type {
	case rls.Movie, rls.Series, rls.Episode, rls.Music:
		cand.Kind = KindNoise
		return cand
	}
	if containsAny(toks, mediaNoise) {
		cand.Kind = KindNoise
		return cand
	}

	platformLocked := containsAny(toks, platformExclusions)

	for _, kw := range addonKeywords {
		if _, ok := toks[kw.Keyword]; ok {
			if platformLocked {
				// Console updates and DLC are useless here.
				cand.Kind = KindNoise
				return cand
			}
			cand.Kind = KindAddOn
			cand.AddonType = kw.Type
			return cand
		}
	}

	if group := strings.ToUpper(parsed.Group); group != "" {
		if _, ok := repackGroups[group]; ok {
			cand.Tier = TierRepack
		}
	}
	// FitGirl style names keep the group inside the title block where the
	// parser may miss it, so check tokens as well.
	if cand.Tier != TierRepack && containsAny(toks, repackGroups) {
		cand.Tier = TierRepack
	}

	cand.Kind = KindBaseGame
	cand.PlatformLocked = platformLocked
	return cand
}
