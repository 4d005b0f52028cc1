package export

import (
	"strings"
	"testing"
	"time"

	"github.com/paperbark/kindwords/internal/model"
)

func strPtr(s string) *string { return &s }

func TestTextEmpty(t *testing.T) {
	if got := Text(nil); got != "" {
		t.Errorf("Text(nil) = %q, want empty", got)
	}
}

func TestTextReport(t *testing.T) {
	created := time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC)
	things := []model.Thing{
		{Thing: "You inspire me", Who: "Bo", CreatedAt: created},
		{Thing: "Great talk", Who: "Jo", Why: strPtr("after the meetup"), CreatedAt: created.AddDate(0, 0, 1)},
	}

	got := Text(things)
	want := "1. \"You inspire me\" — Bo\n" +
		"   Date: 3/9/2024\n" +
		"\n" +
		"2. \"Great talk\" — Jo\n" +
		"   Why: after the meetup\n" +
		"   Date: 3/10/2024\n"

	if got != want {
		t.Errorf("Text =\n%q\nwant\n%q", got, want)
	}
}

func TestTextOmitsEmptyWhy(t *testing.T) {
	things := []model.Thing{
		{Thing: "quote", Who: "someone", Why: strPtr(""), CreatedAt: time.Now()},
	}
	if strings.Contains(Text(things), "Why:") {
		t.Error("empty why must not produce a Why line")
	}
}

func TestTextNumbering(t *testing.T) {
	things := make([]model.Thing, 3)
	for i := range things {
		things[i] = model.Thing{Thing: "q", Who: "w", CreatedAt: time.Now()}
	}
	got := Text(things)
	for _, prefix := range []string{"1. ", "2. ", "3. "} {
		if !strings.Contains(got, prefix) {
			t.Errorf("report missing entry %q", prefix)
		}
	}
}
