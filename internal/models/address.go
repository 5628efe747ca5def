package models

type Address struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	IsDefault bool   `json:"is_default"`
}

// DefaultAddress returns the address flagged is_default, if any.
func DefaultAddress(addrs []Address) (Address, bool) {
	for _, a := range addrs {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}
