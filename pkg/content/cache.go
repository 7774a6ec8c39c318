package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Paper is one catalog entry. ChatAvailable is derived once at startup from
// the presence of a companion full-text file and never re-checked per request.
type Paper struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Venue         string   `json:"venue,omitempty"`
	Year          int      `json:"year,omitempty"`
	URL           string   `json:"url,omitempty"`
	ChatAvailable bool     `json:"chat_available"`
}

// Cache holds the paper catalog, loaded once at construction and read-only
// afterwards. Full texts are lazily read from disk and memoized.
type Cache struct {
	papers  map[string]Paper
	order   []string
	textDir string
	texts   *gocache.Cache
}

// NewCache loads the catalog from papersPath and marks each entry
// chat-available when textDir contains "<id>.txt".
func NewCache(papersPath, textDir string) (*Cache, error) {
	raw, err := os.ReadFile(papersPath)
	if err != nil {
		return nil, fmt.Errorf("read paper catalog: %w", err)
	}

	var entries []Paper
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse paper catalog: %w", err)
	}

	c := &Cache{
		papers:  make(map[string]Paper, len(entries)),
		order:   make([]string, 0, len(entries)),
		textDir: textDir,
		// Full texts are static files; the TTL just bounds memory if the
		// catalog is large and most papers are never chatted about.
		texts: gocache.New(1*time.Hour, 10*time.Minute),
	}

	for _, p := range entries {
		if p.ID == "" {
			continue
		}
		if _, err := os.Stat(c.textPath(p.ID)); err == nil {
			p.ChatAvailable = true
		}
		c.papers[p.ID] = p
		c.order = append(c.order, p.ID)
	}

	return c, nil
}

// Papers returns all catalog entries in file order.
func (c *Cache) Papers() []Paper {
	out := make([]Paper, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.papers[id])
	}
	return out
}

// GetPaper returns the catalog entry for id.
func (c *Cache) GetPaper(id string) (Paper, bool) {
	p, ok := c.papers[id]
	return p, ok
}

// LoadFullText returns the companion full text for id. The file is read once
// per memoization window, not once per message.
func (c *Cache) LoadFullText(id string) (string, bool) {
	if x, found := c.texts.Get(id); found {
		return x.(string), true
	}

	p, ok := c.papers[id]
	if !ok || !p.ChatAvailable {
		return "", false
	}

	raw, err := os.ReadFile(c.textPath(id))
	if err != nil {
		return "", false
	}

	text := string(raw)
	c.texts.Set(id, text, gocache.DefaultExpiration)
	return text, true
}

func (c *Cache) textPath(id string) string {
	return filepath.Join(c.textDir, id+".txt")
}
