package domain

import "time"

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// Customization maps an option name to the value the buyer picked for it
// (text, color, boolean, or a data-URI reference to an uploaded image).
type Customization map[string]any

type CartLine struct {
	LineID        string        `json:"line_id" bson:"line_id"`
	ProductID     int64         `json:"product_id" bson:"product_id"`
	Name          string        `json:"name" bson:"name"`
	UnitPrice     float64       `json:"unit_price" bson:"unit_price"`
	Quantity      int           `json:"quantity" bson:"quantity"`
	Customization Customization `json:"customization,omitempty" bson:"customization,omitempty"`
	AddedAt       time.Time     `json:"added_at" bson:"added_at"`
}

// Cart holds one session's lines in insertion order plus the panel flag.
// Two lines never share the same product and customization fingerprint;
// the store merges them on add.
type Cart struct {
	SessionID string     `json:"session_id" bson:"session_id"`
	Lines     []CartLine `json:"lines" bson:"lines"`
	Open      bool       `json:"open" bson:"open"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// Count is the sum of quantities across all lines.
func (c *Cart) Count() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// Total is the sum of unit price times quantity across all lines.
func (c *Cart) Total() float64 {
	total := 0.0
	for _, line := range c.Lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return total
}
