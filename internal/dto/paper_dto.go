package dto

// PaperResponse is one catalog entry as served to the publications page.
type PaperResponse struct {
	Id            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Venue         string   `json:"venue,omitempty"`
	Year          int      `json:"year,omitempty"`
	URL           string   `json:"url,omitempty"`
	ChatAvailable bool     `json:"chat_available"`
}
