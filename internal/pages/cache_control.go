package pages

import (
	"fmt"
	"time"

	"github.com/mohsenKh75/next-patterns/interfaces"
)

const notFoundCacheControl = "private, no-cache, no-store, max-age=0, must-revalidate"

// cacheControl returns the Cache-Control header of a page that is regenerated every revalidate
// interval. If the page has a cache life profile, a shared cache may keep serving it while it is
// regenerated, until the profile's Expire has elapsed.
func cacheControl(revalidate time.Duration, unit interfaces.CacheLifeUnit) string {
	maxAge := int(revalidate / time.Second)
	profile, ok := interfaces.ProfileFor(unit)
	if !ok || profile.Expire <= revalidate {
		return fmt.Sprintf("s-maxage=%d", maxAge)
	}
	return fmt.Sprintf("s-maxage=%d, stale-while-revalidate=%d", maxAge, int((profile.Expire-revalidate)/time.Second))
}
