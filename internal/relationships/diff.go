// Package relationships classifies follower and following lists into mutuals and one-sided connections.
package relationships

import (
	"math"
	"strings"
	"time"
)

const ratioPrecision = 100

// Identity describes one follower or following entry of an export.
type Identity struct {
	Key   string    `json:"key"`
	Link  string    `json:"link,omitempty"`
	Since time.Time `json:"since,omitzero"`
}

// KeyFunc extracts the comparison key of an identity.
type KeyFunc func(Identity) string

// UsernameKey compares Instagram usernames case-insensitively.
func UsernameKey(identity Identity) string {
	return strings.ToLower(identity.Key)
}

// AccountIDKey compares opaque Twitter/X account identifiers exactly.
func AccountIDKey(identity Identity) string {
	return identity.Key
}

// Stats summarizes a relationship diff.
type Stats struct {
	Followers        int     `json:"followers"`
	Following        int     `json:"following"`
	Mutuals          int     `json:"mutuals"`
	NotFollowingBack int     `json:"notFollowingBack"`
	YouDontFollow    int     `json:"youDontFollow"`
	Ratio            float64 `json:"ratio"`
}

// Result holds the raw relationship lists together with the derived views.
type Result struct {
	Followers        []Identity `json:"followers"`
	Following        []Identity `json:"following"`
	Mutuals          []Identity `json:"mutuals"`
	NotFollowingBack []Identity `json:"notFollowingBack"`
	YouDontFollow    []Identity `json:"youDontFollow"`
	Stats            Stats      `json:"stats"`
}

// Diff classifies every following entry as mutual or not following back, and every follower that
// is not followed as one you don't follow. Duplicate entries are kept and classified on their own,
// so counts reflect raw entries rather than unique identities. Input order is preserved.
func Diff(followers []Identity, following []Identity, key KeyFunc) Result {
	if key == nil {
		key = AccountIDKey
	}
	followerKeys := keySet(followers, key)
	followingKeys := keySet(following, key)

	result := Result{
		Followers:        followers,
		Following:        following,
		Mutuals:          []Identity{},
		NotFollowingBack: []Identity{},
		YouDontFollow:    []Identity{},
	}
	for _, identity := range following {
		if _, followsBack := followerKeys[key(identity)]; followsBack {
			result.Mutuals = append(result.Mutuals, identity)
		} else {
			result.NotFollowingBack = append(result.NotFollowingBack, identity)
		}
	}
	for _, identity := range followers {
		if _, followed := followingKeys[key(identity)]; !followed {
			result.YouDontFollow = append(result.YouDontFollow, identity)
		}
	}

	result.Stats = Stats{
		Followers:        len(followers),
		Following:        len(following),
		Mutuals:          len(result.Mutuals),
		NotFollowingBack: len(result.NotFollowingBack),
		YouDontFollow:    len(result.YouDontFollow),
		Ratio:            Ratio(len(following), len(followers)),
	}
	return result
}

// Ratio returns following/followers rounded to two decimals, or 0 without followers.
func Ratio(followingCount int, followerCount int) float64 {
	if followerCount == 0 {
		return 0
	}
	return math.Round(float64(followingCount)/float64(followerCount)*ratioPrecision) / ratioPrecision
}

// RecentSince returns the identities whose Since timestamp is after cutoff. Entries without a
// timestamp never qualify.
func RecentSince(identities []Identity, cutoff time.Time) []Identity {
	recent := []Identity{}
	for _, identity := range identities {
		if identity.Since.IsZero() {
			continue
		}
		if identity.Since.After(cutoff) {
			recent = append(recent, identity)
		}
	}
	return recent
}

func keySet(identities []Identity, key KeyFunc) map[string]struct{} {
	keys := make(map[string]struct{}, len(identities))
	for _, identity := range identities {
		keys[key(identity)] = struct{}{}
	}
	return keys
}
