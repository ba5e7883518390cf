package restaurant

import (
	"time"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/hours"
)

// Validator checks that the set of restaurants touched by one order may be ordered from
// together, right now.
type Validator struct {
	// PlatformHours is the baseline window; a restaurant closed while it is open rejects orders.
	PlatformHours hours.Window
	// DefaultHours applies to restaurants without configured operating hours.
	DefaultHours hours.Window
	Location     *time.Location
	Now          func() time.Time
}

func NewValidator(platform, def hours.Window, loc *time.Location) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	return &Validator{PlatformHours: platform, DefaultHours: def, Location: loc, Now: time.Now}
}

// Validate runs the group, availability, operating-hours and hub checks in that order and
// returns the first failure.
func (v *Validator) Validate(restaurants []*Restaurant) error {
	if a, b := outOfGroup(restaurants); a != nil {
		return apperror.CrossRestaurantOrder("You can't order from %s along with %s at the same time.", a.Name, b.Name)
	}

	now := v.Now().In(v.Location)
	platformOpen := v.PlatformHours.Contains(now)
	for _, r := range restaurants {
		if !r.Availability {
			return apperror.RestaurantUnavailable("%s isn't available at this moment.", r.Name)
		}
		if platformOpen && !r.Hours(v.DefaultHours).Contains(now) {
			return apperror.RestaurantClosed("%s is closed at this moment.", r.Name)
		}
	}

	hubs := make(map[string]struct{}, len(restaurants))
	for _, r := range restaurants {
		hubs[r.HubID] = struct{}{}
	}
	if len(hubs) > 1 {
		return apperror.MultiHubOrder("Sorry for the inconvenience, we are not accepting orders from multiple hub at the same time.")
	}
	return nil
}

// outOfGroup finds a pair of distinct, non-sub_store restaurants where neither lists the
// other in its management group.
func outOfGroup(restaurants []*Restaurant) (*Restaurant, *Restaurant) {
	for i, a := range restaurants {
		if a.Type == TypeSubStore {
			continue
		}
		for _, b := range restaurants[i+1:] {
			if b.Type == TypeSubStore || a.ID == b.ID {
				continue
			}
			if !a.InGroup(b.ID) && !b.InGroup(a.ID) {
				return a, b
			}
		}
	}
	return nil, nil
}
