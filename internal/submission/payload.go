// Package submission defines the JSON body a compiled form posts to its
// webhook endpoint, and the JSON Schema receivers can validate it with.
package submission

// Payload is the webhook body sent once per successful submission.
type Payload struct {
	FormTitle     string `json:"form_title"`
	StoreName     string `json:"store_name"`
	SubmittedAt   string `json:"submitted_at"`
	State         State  `json:"state"`
	TotalPrice    int    `json:"total_price"`
	TotalDuration int    `json:"total_duration"`
}

// State is the captured wizard state at submission time.
type State struct {
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Gender      string   `json:"gender,omitempty"`
	VisitCount  string   `json:"visit_count,omitempty"`
	Coupon      string   `json:"coupon,omitempty"`
	MenuID      string   `json:"menu_id"`
	MenuName    string   `json:"menu_name"`
	SubmenuID   string   `json:"submenu_id,omitempty"`
	SubmenuName string   `json:"submenu_name,omitempty"`
	Options     []Option `json:"options"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Alternates  []Slot   `json:"alternates"`
	Message     string   `json:"message"`
	LineUserID  string   `json:"line_user_id,omitempty"`
}

// Option is a selected add-on.
type Option struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// Slot is a date and start time.
type Slot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}
