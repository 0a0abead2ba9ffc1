package season

import "time"

// Season is one rating period. Ratings never carry across seasons; every
// player starts a season at the configured baseline.
type Season struct {
	Number    int
	StartedAt time.Time
	EndedAt   *time.Time
	Active    bool
}
