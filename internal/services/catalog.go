package services

import (
	"time"

	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/models"
)

// JackpotID is the prize drawn last, with the longest roll
const JackpotID = "special"

// Catalog is the fixed, ordered list of prizes drawn in every session,
// smallest prize first and the jackpot last.
type Catalog struct {
	prizes []models.Prize
	index  map[string]int
}

// DefaultCatalog returns the nine-tier ceremony catalog
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		models.Prize{ID: "eighth", Name: "Giải Tám", DisplayName: "GIẢI TÁM", Results: 1, Digits: 2, RevealDelay: 4000 * time.Millisecond},
		models.Prize{ID: "seventh", Name: "Giải Bảy", DisplayName: "GIẢI BẢY", Results: 1, Digits: 3, RevealDelay: 4500 * time.Millisecond},
		models.Prize{ID: "sixth", Name: "Giải Sáu", DisplayName: "GIẢI SÁU", Results: 3, Digits: 4, RevealDelay: 4500 * time.Millisecond},
		models.Prize{ID: "fifth", Name: "Giải Năm", DisplayName: "GIẢI NĂM", Results: 1, Digits: 4, RevealDelay: 5000 * time.Millisecond},
		models.Prize{ID: "fourth", Name: "Giải Tư", DisplayName: "GIẢI TƯ", Results: 7, Digits: 5, RevealDelay: 8000 * time.Millisecond},
		models.Prize{ID: "third", Name: "Giải Ba", DisplayName: "GIẢI BA", Results: 2, Digits: 5, RevealDelay: 5500 * time.Millisecond},
		models.Prize{ID: "second", Name: "Giải Nhì", DisplayName: "GIẢI NHÌ", Results: 1, Digits: 5, RevealDelay: 4500 * time.Millisecond},
		models.Prize{ID: "first", Name: "Giải Nhất", DisplayName: "GIẢI NHẤT", Results: 1, Digits: 5, RevealDelay: 5000 * time.Millisecond},
		models.Prize{ID: JackpotID, Name: "Giải Đặc Biệt", DisplayName: "GIẢI ĐẶC BIỆT", Results: 1, Digits: 6, RevealDelay: 6000 * time.Millisecond},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog builds a catalog from prizes in draw order
func NewCatalog(prizes ...models.Prize) (*Catalog, error) {
	if len(prizes) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		prizes: make([]models.Prize, len(prizes)),
		index:  make(map[string]int, len(prizes)),
	}
	for i, p := range prizes {
		if p.ID == "" {
			return nil, errors.Validationf("prize %d has no id", i)
		}
		if p.Results < 1 {
			return nil, errors.Validationf("prize %s must draw at least one result", p.ID)
		}
		// 10^18 is the largest power of ten that fits an int64
		if p.Digits < 1 || p.Digits > 18 {
			return nil, errors.Validationf("prize %s must have between 1 and 18 digits", p.ID)
		}
		if p.RevealDelay < 0 {
			return nil, errors.Validationf("prize %s has a negative reveal delay", p.ID)
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, errors.Validationf("duplicate prize id %s", p.ID)
		}
		c.prizes[i] = p
		c.index[p.ID] = i
	}
	return c, nil
}

// Prizes returns a copy of the prizes in draw order
func (c *Catalog) Prizes() []models.Prize {
	out := make([]models.Prize, len(c.prizes))
	copy(out, c.prizes)
	return out
}

// Len returns the number of prizes
func (c *Catalog) Len() int {
	return len(c.prizes)
}

// At returns the prize at position i
func (c *Catalog) At(i int) models.Prize {
	return c.prizes[i]
}

// Lookup finds a prize by ID
func (c *Catalog) Lookup(id string) (models.Prize, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.Prize{}, false
	}
	return c.prizes[i], true
}

// IndexOf returns the draw position of a prize, or -1 if it is not in the catalog
func (c *Catalog) IndexOf(id string) int {
	i, ok := c.index[id]
	if !ok {
		return -1
	}
	return i
}

// FirstMissing returns the position of the first prize without an entry in
// results, or Len() when every prize has been drawn.
func (c *Catalog) FirstMissing(results map[string]models.DrawResult) int {
	for i, p := range c.prizes {
		if _, ok := results[p.ID]; !ok {
			return i
		}
	}
	return len(c.prizes)
}

// IsJackpot reports whether p is the jackpot prize
func (c *Catalog) IsJackpot(p models.Prize) bool {
	return p.ID == JackpotID
}

// Ordered returns the results that belong to the catalog, in draw order
func (c *Catalog) Ordered(results map[string]models.DrawResult) []models.DrawResult {
	out := make([]models.DrawResult, 0, len(results))
	for _, p := range c.prizes {
		if r, ok := results[p.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Remaining returns the prizes that have no entry in results, in draw order
func (c *Catalog) Remaining(results map[string]models.DrawResult) []models.Prize {
	out := make([]models.Prize, 0, len(c.prizes))
	for _, p := range c.prizes {
		if _, ok := results[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out
}
