package address

// Address is one entry of a user's delivery address book.
type Address struct {
	AddressID   int    `json:"addressId"`
	UserID      int    `json:"userId"`
	AddressName string `json:"addressName"`
	AddressDesc string `json:"addressDesc"`
	PostalCode  string `json:"postalCode"`
	Phone       string `json:"phone"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Label is the single-line form stored on orders.
func (a Address) Label() string {
	s := a.AddressDesc
	if a.AddressName != "" {
		s = a.AddressName + ", " + s
	}
	if a.PostalCode != "" {
		s += " " + a.PostalCode
	}
	return s
}
