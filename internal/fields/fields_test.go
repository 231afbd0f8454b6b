package fields

import "testing"

func TestExtract_FullConversation(t *testing.T) {
	text := "Customer called about order 1012809669. Email is john@example.com. Phone (752) 693-4642. Zip code 78202."

	got := Extract(text)

	if got.Email != "john@example.com" {
		t.Errorf("expected email john@example.com, got %q", got.Email)
	}
	if got.Phone != "752-693-4642" {
		t.Errorf("expected phone 752-693-4642, got %q", got.Phone)
	}
	if got.ZipCode != "78202" {
		t.Errorf("expected zip 78202, got %q", got.ZipCode)
	}
	if got.OrderID != "1012809669" {
		t.Errorf("expected order id 1012809669, got %q", got.OrderID)
	}
}

func TestExtract_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		got := Extract(text)
		if got != Empty() {
			t.Errorf("Extract(%q) = %+v, want all NA", text, got)
		}
	}
}

func TestExtract_NoQualifyingSubstrings(t *testing.T) {
	got := Extract("Thanks for waiting, I have sorted that out for you. Anything else today?")
	for _, name := range Names {
		if v := got.Get(name); v != NA {
			t.Errorf("expected %s NA, got %q", name, v)
		}
	}
}

func TestExtract_Idempotent(t *testing.T) {
	text := "Order ID is 2243746561. Customer email: customer@company.com. Zip: 10001."
	first := Extract(text)
	second := Extract(text)
	if first != second {
		t.Errorf("results differ between calls: %+v vs %+v", first, second)
	}
}

func TestExtract_PhoneAndOrderStayDistinct(t *testing.T) {
	text := "My order ID is 123456789 and my phone is (555) 123-4567."

	got := Extract(text)

	if got.OrderID != "123456789" {
		t.Errorf("expected order id 123456789, got %q", got.OrderID)
	}
	if got.Phone != "555-123-4567" {
		t.Errorf("expected phone 555-123-4567, got %q", got.Phone)
	}
}

func TestPhone_OrderIDPrefixNeverPhone(t *testing.T) {
	cases := []string{
		"order id (555) 123-4567",
		"Order ID: (555) 123-4567",
		"my order number (555) 123-4567 please",
		"The order # is (555) 123-4567",
	}
	for _, profile := range []Profile{ProfileStrict, ProfileExtended} {
		e := New(profile)
		for _, text := range cases {
			if got := e.Phone(text); got != NA {
				t.Errorf("[%s] Phone(%q) = %q, want NA", profile, text, got)
			}
		}
	}
}

func TestPhone_Formats(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		text    string
		want    string
	}{
		{"bracketed", ProfileStrict, "you can reach me at (003) 941-7614", "003-941-7614"},
		{"bracketed no space", ProfileStrict, "(212)555.0199 is mine", "212-555-0199"},
		{"dashed strict ignored", ProfileStrict, "my phone is 116-048-7515", NA},
		{"dashed extended", ProfileExtended, "my phone is 116-048-7515", "116-048-7515"},
		{"dotted extended", ProfileExtended, "call me on 555.123.4567", "555-123-4567"},
		{"dashed without cue", ProfileExtended, "reference 116-048-7515 applies", NA},
		{"call cue after order id", ProfileStrict, "My order id is 12345678, call me at (555) 123-4567", "555-123-4567"},
		{"cue after order mention", ProfileStrict, "my order number is 116-048-7515. Please contact at (123) 456-7890.", "123-456-7890"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.profile).Phone(tt.text); got != tt.want {
				t.Errorf("Phone(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"reach me at jane.doe@mail.example.org.", "jane.doe@mail.example.org"},
		{"first a@b.co then c@d.co", "a@b.co"},
		{"the handle is @support only", NA},
		{"no address here", NA},
	}
	for _, tt := range tests {
		if got := Email(tt.text); got != tt.want {
			t.Errorf("Email(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestZipCode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"keyword", "my zip code is 30301", "30301"},
		{"keyword colon", "Zip: 10001.", "10001"},
		{"zip plus four", "send it to 94105-1234 please", "94105-1234"},
		{"address", "ship to 12 Elm Street, Austin, TX 78701 thanks", "78701"},
		{"isolated", "Address is 90210.", "90210"},
		{"order context", "my order id is 12345 I think", NA},
		{"inside long number", "reference 123456 78901", NA},
		{"next to area code", "(415) 55512 x", NA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ZipCode(tt.text); got != tt.want {
				t.Errorf("ZipCode(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestOrderID(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"order id it is", "Could you give me the order ID. It is 1012809669", "1012809669"},
		{"order number", "order number: 445566", "445566"},
		{"order hash", "order # 7788990", "7788990"},
		{"too short", "order 12345", NA},
		{"account id shape", "order 123456A is my account", NA},
		{"answer on next turn", "Do you have an order ID?\nSure, let me look.\n2243746561", "2243746561"},
		{"bare nine digits", "it was 987654321 I believe", "987654321"},
		{"bare ten digits", "it was 9876543210 I believe", NA},
		{"ten digits near order", "the right one for the order was 9876543210", "9876543210"},
		{"phone keyword", "my phone 5551234567890 is new", NA},
		{"inside bracketed phone", "(555) 123456789", NA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OrderID(tt.text); got != tt.want {
				t.Errorf("OrderID(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestCustomerName(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"hello, my name is jane doe and I need help", "Jane Doe"},
		{"Customer: Albert Sanders", "Albert Sanders"},
		{"Hi, my order is late", NA},
		{"nothing to see", NA},
		{"please call me at (555) 123-4567", NA},
		{"I'm wondering about my refund", NA},
		{"I am calling about order 1012809669", NA},
		{"this is Maria at the front desk", "Maria"},
		{"an email with my credits attached", NA},
		{"call me Sam", "Sam"},
	}
	for _, tt := range tests {
		if got := CustomerName(tt.text); got != tt.want {
			t.Errorf("CustomerName(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestParseProfile(t *testing.T) {
	if ParseProfile("extended") != ProfileExtended {
		t.Error("expected extended profile")
	}
	if ParseProfile("") != ProfileStrict || ParseProfile("bogus") != ProfileStrict {
		t.Error("expected strict profile for unknown values")
	}
}
