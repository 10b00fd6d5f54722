package domain

// ProductListing is one shopping-search result. Fields mirror what the
// search service returns; listings are passed through unmodified except for
// selection.
type ProductListing struct {
	ProductID string `json:"productId,omitempty"`
	Title     string `json:"title"`
	ImageURL  string `json:"imageUrl"`
	Link      string `json:"link,omitempty"`
	Price     string `json:"price,omitempty"`
	Source    string `json:"source,omitempty"`
}
