package delivery

// HubArea is a customer area served by a hub, with the delivery charge for it.
// A zero charge means the area is listed but not serviced.
type HubArea struct {
	HubID          string `json:"hub"`
	Area           string `json:"area"`
	DeliveryCharge int64  `json:"delivery_charge"`
}
