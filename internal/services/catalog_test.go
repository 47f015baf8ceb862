package services_test

import (
	"testing"

	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/services"
)

func TestDefaultCatalog_Table(t *testing.T) {
	c := services.DefaultCatalog()

	want := []struct {
		id      string
		results int
		digits  int
		delayMS int64
	}{
		{"eighth", 1, 2, 4000},
		{"seventh", 1, 3, 4500},
		{"sixth", 3, 4, 4500},
		{"fifth", 1, 4, 5000},
		{"fourth", 7, 5, 8000},
		{"third", 2, 5, 5500},
		{"second", 1, 5, 4500},
		{"first", 1, 5, 5000},
		{"special", 1, 6, 6000},
	}

	prizes := c.Prizes()
	if len(prizes) != len(want) {
		t.Fatalf("expected %d prizes, got %d", len(want), len(prizes))
	}
	for i, w := range want {
		p := prizes[i]
		if p.ID != w.id || p.Results != w.results || p.Digits != w.digits || p.RevealDelay.Milliseconds() != w.delayMS {
			t.Errorf("prize %d: got %+v, want %+v", i, p, w)
		}
		if c.IndexOf(w.id) != i {
			t.Errorf("IndexOf(%s) = %d, want %d", w.id, c.IndexOf(w.id), i)
		}
	}
}

func TestCatalog_PrizesReturnsCopy(t *testing.T) {
	c := services.DefaultCatalog()
	prizes := c.Prizes()
	prizes[0].ID = "changed"

	if c.Prizes()[0].ID != "eighth" {
		t.Error("mutating the returned slice changed the catalog")
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := services.DefaultCatalog()

	p, ok := c.Lookup("fourth")
	if !ok || p.Results != 7 {
		t.Errorf("Lookup(fourth) = %+v, %v", p, ok)
	}
	if _, ok := c.Lookup("ninth"); ok {
		t.Error("expected unknown prize lookup to fail")
	}
	if c.IndexOf("ninth") != -1 {
		t.Error("expected IndexOf for unknown prize to be -1")
	}
}

func TestCatalog_FirstMissing(t *testing.T) {
	c := services.DefaultCatalog()

	results := map[string]models.DrawResult{}
	if got := c.FirstMissing(results); got != 0 {
		t.Errorf("empty results: got %d, want 0", got)
	}

	results["eighth"] = models.DrawResult{}
	results["seventh"] = models.DrawResult{}
	results["fifth"] = models.DrawResult{}
	if got := c.FirstMissing(results); got != 2 {
		t.Errorf("gap at sixth: got %d, want 2", got)
	}

	for _, p := range c.Prizes() {
		results[p.ID] = models.DrawResult{}
	}
	if got := c.FirstMissing(results); got != c.Len() {
		t.Errorf("all present: got %d, want %d", got, c.Len())
	}
}

func TestCatalog_IsJackpot(t *testing.T) {
	c := services.DefaultCatalog()
	special, _ := c.Lookup("special")
	first, _ := c.Lookup("first")

	if !c.IsJackpot(special) {
		t.Error("expected special to be the jackpot")
	}
	if c.IsJackpot(first) {
		t.Error("expected first not to be the jackpot")
	}
}

func TestCatalog_OrderedAndRemaining(t *testing.T) {
	c := services.DefaultCatalog()
	results := map[string]models.DrawResult{
		"special": {Numbers: []string{"123456"}},
		"eighth":  {Numbers: []string{"01"}},
		"bogus":   {Numbers: []string{"9"}},
	}

	ordered := c.Ordered(results)
	if len(ordered) != 2 {
		t.Fatalf("expected 2 ordered results, got %d", len(ordered))
	}
	if ordered[0].Numbers[0] != "01" || ordered[1].Numbers[0] != "123456" {
		t.Errorf("unexpected order: %+v", ordered)
	}

	remaining := c.Remaining(results)
	if len(remaining) != 7 {
		t.Fatalf("expected 7 remaining prizes, got %d", len(remaining))
	}
	if remaining[0].ID != "seventh" || remaining[6].ID != "first" {
		t.Errorf("unexpected remaining order: %s .. %s", remaining[0].ID, remaining[6].ID)
	}
}

func TestNewCatalog_Validation(t *testing.T) {
	tests := []struct {
		name   string
		prizes []models.Prize
	}{
		{"empty", nil},
		{"missing id", []models.Prize{{Results: 1, Digits: 2}}},
		{"zero results", []models.Prize{{ID: "a", Results: 0, Digits: 2}}},
		{"zero digits", []models.Prize{{ID: "a", Results: 1, Digits: 0}}},
		{"too many digits", []models.Prize{{ID: "a", Results: 1, Digits: 19}}},
		{"negative delay", []models.Prize{{ID: "a", Results: 1, Digits: 1, RevealDelay: -1}}},
		{"duplicate", []models.Prize{{ID: "a", Results: 1, Digits: 1}, {ID: "a", Results: 1, Digits: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.NewCatalog(tt.prizes...)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if errors.KindOf(err) != errors.ErrValidation {
				t.Errorf("expected validation kind, got %v", errors.KindOf(err))
			}
		})
	}
}
