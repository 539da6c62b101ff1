package ranking

import (
	"github.com/spigell/college-counselor/internal/catalog"
	"github.com/spigell/college-counselor/internal/profile"
)

const (
	streamPoints   = 25
	locationPoints = 20
)

type streamBonus struct {
	toggle
}

// NewStream awards entries offering the preferred stream.
func NewStream() Bonus {
	return &streamBonus{}
}

func (b *streamBonus) Name() string { return "stream" }

func (b *streamBonus) Score(p *profile.Profile, e *catalog.Entry) (int, string, bool) {
	if p.PreferredStream == nil {
		return 0, "", false
	}
	for _, stream := range e.Streams {
		if overlaps(*p.PreferredStream, stream) {
			return streamPoints, "Offers " + *p.PreferredStream, true
		}
	}
	return 0, "", false
}

func (b *streamBonus) Status() Status {
	return b.status(b.Name(), streamPoints)
}

type locationBonus struct {
	toggle
}

// NewLocation awards entries located in the preferred area.
func NewLocation() Bonus {
	return &locationBonus{}
}

func (b *locationBonus) Name() string { return "location" }

func (b *locationBonus) Score(p *profile.Profile, e *catalog.Entry) (int, string, bool) {
	if p.PreferredLocation == nil || !overlaps(*p.PreferredLocation, e.Location) {
		return 0, "", false
	}
	return locationPoints, "Located in preferred area", true
}

func (b *locationBonus) Status() Status {
	return b.status(b.Name(), locationPoints)
}
