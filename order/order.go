// Package order holds the receipt document handed over by the order-entry
// side: a shop header, the ordered line items and the total to print.
package order

// Line is one ordered item. Prices are in currency minor units.
type Line struct {
	PrimaryName   string `json:"primaryName"`
	SecondaryName string `json:"secondaryName,omitempty"`
	UnitPrice     uint64 `json:"unitPrice"`
	Quantity      int    `json:"quantity"`
	Category      string `json:"category,omitempty"`
}

// LineTotal is UnitPrice * Quantity.
func (l Line) LineTotal() uint64 {
	if l.Quantity <= 0 {
		return 0
	}
	return l.UnitPrice * uint64(l.Quantity)
}

// StaticDetails are the shop's fixed contact lines.
type StaticDetails struct {
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Document is a receipt as received from the order-entry side. It is
// rendered as given: TotalAmount is not checked against the lines.
type Document struct {
	ShopName    string        `json:"shopName"`
	OrderID     string        `json:"orderId"`
	Lines       []Line        `json:"lines"`
	TotalAmount uint64        `json:"totalAmount"`
	Details     StaticDetails `json:"staticDetails"`
}

// Clone returns a copy that shares no slices with d.
func (d Document) Clone() Document {
	c := d
	c.Lines = append([]Line(nil), d.Lines...)
	return c
}

// SumLines adds up the line totals.
func (d Document) SumLines() uint64 {
	var sum uint64
	for _, l := range d.Lines {
		sum += l.LineTotal()
	}
	return sum
}

// WithDefaultDetails fills empty contact lines from defaults.
func (d Document) WithDefaultDetails(defaults StaticDetails) Document {
	if d.Details.Address == "" {
		d.Details.Address = defaults.Address
	}
	if d.Details.Phone == "" {
		d.Details.Phone = defaults.Phone
	}
	return d
}
