package fields

// NA marks a field that was not found in the text.
const NA = "NA"

// Result is the set of fields pulled from a single conversation.
type Result struct {
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ZipCode      string `json:"zipCode"`
	OrderID      string `json:"orderId"`
	CustomerName string `json:"customerName"`
}

// Empty returns a result with every field set to NA.
func Empty() Result {
	return Result{Email: NA, Phone: NA, ZipCode: NA, OrderID: NA, CustomerName: NA}
}

// Get returns the value of a field by its JSON name, or NA for unknown names.
func (r Result) Get(name string) string {
	switch name {
	case "email":
		return r.Email
	case "phone":
		return r.Phone
	case "zipCode":
		return r.ZipCode
	case "orderId":
		return r.OrderID
	case "customerName":
		return r.CustomerName
	}
	return NA
}

// Names lists the four primary fields in response order.
var Names = []string{"email", "phone", "zipCode", "orderId"}

// Profile selects which phone formats are accepted.
type Profile string

const (
	// ProfileStrict accepts only the bracketed (AAA) EEE-LLLL form.
	ProfileStrict Profile = "strict"
	// ProfileExtended also accepts dashed, dotted and spaced forms when a
	// phone keyword is nearby.
	ProfileExtended Profile = "extended"
)

// ParseProfile maps a config string to a Profile, defaulting to strict.
func ParseProfile(s string) Profile {
	if Profile(s) == ProfileExtended {
		return ProfileExtended
	}
	return ProfileStrict
}
