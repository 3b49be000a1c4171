package billing

// Plan is the plan attached to a subscription or one of its line items
type Plan struct {
	ID       string `json:"id,omitempty"`
	Nickname string `json:"nickname"`
	Amount   int64  `json:"amount,omitempty"`
	Interval string `json:"interval,omitempty"`
}

// Item is a subscription line item
type Item struct {
	ID       string `json:"id"`
	Plan     *Plan  `json:"plan,omitempty"`
	Quantity int64  `json:"quantity"`
}

// Items is the line-item collection of a subscription
type Items struct {
	Data []Item `json:"data"`
}

// Subscription is the normalized subscription record the engine works with.
// TeamID is attached by the plan resolver for downstream correlation; the
// gateway itself knows nothing about teams.
type Subscription struct {
	ID     string `json:"id"`
	TeamID int64  `json:"teamId,omitempty"`
	Status string `json:"status,omitempty"`
	Plan   *Plan  `json:"plan,omitempty"`
	Items  Items  `json:"items"`
}
