package interfaces

import "time"

// CacheLifeUnit names one of the standard cache lifetime profiles.
type CacheLifeUnit string

const (
	// CacheLifeSeconds is for data that changes within seconds.
	CacheLifeSeconds CacheLifeUnit = "seconds"
	// CacheLifeMinutes is for data that changes within minutes.
	CacheLifeMinutes CacheLifeUnit = "minutes"
	// CacheLifeHours is for data that changes a few times a day.
	CacheLifeHours CacheLifeUnit = "hours"
	// CacheLifeDays is for data that changes about once a day.
	CacheLifeDays CacheLifeUnit = "days"
)

// CacheLifeProfile describes how long a cached page or fetch result may be used.
//
// Within Revalidate of being stored, an entry is fresh. After that it is stale: it may still be
// served while a refresh happens in the background, until Expire has elapsed. Stale is how long a
// client may reuse the response without checking with the server at all.
type CacheLifeProfile struct {
	Stale      time.Duration
	Revalidate time.Duration
	Expire     time.Duration
}

var cacheLifeProfiles = map[CacheLifeUnit]CacheLifeProfile{
	CacheLifeSeconds: {Stale: 30 * time.Second, Revalidate: time.Second, Expire: time.Minute},
	CacheLifeMinutes: {Stale: 5 * time.Minute, Revalidate: time.Minute, Expire: time.Hour},
	CacheLifeHours:   {Stale: 5 * time.Minute, Revalidate: time.Hour, Expire: 24 * time.Hour},
	CacheLifeDays:    {Stale: 5 * time.Minute, Revalidate: 24 * time.Hour, Expire: 7 * 24 * time.Hour},
}

// IsValid returns true if the unit is one of the known profile names.
func (u CacheLifeUnit) IsValid() bool {
	_, ok := cacheLifeProfiles[u]
	return ok
}

// ProfileFor returns the standard profile for a unit. The second return value is false for an
// empty or unknown unit.
func ProfileFor(unit CacheLifeUnit) (CacheLifeProfile, bool) {
	p, ok := cacheLifeProfiles[unit]
	return p, ok
}
