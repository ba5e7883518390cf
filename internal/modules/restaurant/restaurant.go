package restaurant

import (
	"slices"
	"time"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/hours"
)

type Type string

const (
	TypeRestaurant Type = "restaurant"
	TypeStore      Type = "store"
	TypeSubStore   Type = "sub_store"
)

type Address struct {
	Address   string `json:"address"`
	Area      string `json:"area"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Restaurant is a vendor on the platform. Stores and sub-stores are restaurants too.
type Restaurant struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	BannerImage    string    `json:"banner_image,omitempty"`
	Type           Type      `json:"type"`
	Availability   bool      `json:"availability"`
	OperatingHours []int     `json:"operating_hours,omitempty"`
	Group          []string  `json:"group,omitempty"`
	HubID          string    `json:"hub"`
	Prefix         string    `json:"prefix"`
	Counter        int64     `json:"counter"`
	Address        *Address  `json:"address,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsStore is true for both store and sub_store restaurants.
func (r *Restaurant) IsStore() bool { return r.Type == TypeStore || r.Type == TypeSubStore }

func (r *Restaurant) InGroup(id string) bool { return slices.Contains(r.Group, id) }

// Hours returns the restaurant's operating window, or def when none is configured.
func (r *Restaurant) Hours(def hours.Window) hours.Window {
	if len(r.OperatingHours) != 2 {
		return def
	}
	return hours.Window{r.OperatingHours[0], r.OperatingHours[1]}
}
