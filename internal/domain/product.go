package domain

// Product is the API-facing catalog record. ID is the store key rendered as a string.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	InStock     bool     `json:"in_stock"`
	Image       string   `json:"image"`
	Gallery     []string `json:"gallery"`
	Colors      []string `json:"colors"`
	Materials   []string `json:"materials"`
	Rating      float64  `json:"rating"`
	Featured    bool     `json:"featured"`
	ModelURL    *string  `json:"model_url"`
	Tags        []string `json:"tags"`
}

const (
	MinRating = 0
	MaxRating = 5
)

// Valid reports whether the product satisfies the catalog invariants.
func (p *Product) Valid() bool {
	return p.Price >= 0 && p.Rating >= MinRating && p.Rating <= MaxRating
}
