package catalog

import "testing"

func TestAll_CountAndUniqueIDs(t *testing.T) {
	all := All()
	if len(all) != 21 {
		t.Fatalf("len(All()) = %d, want 21", len(all))
	}
	seen := map[string]bool{}
	for _, d := range all {
		if seen[d.ID] {
			t.Fatalf("duplicate portal id %q", d.ID)
		}
		seen[d.ID] = true
		if d.Title == "" || d.Description == "" {
			t.Fatalf("portal %q has empty title or description", d.ID)
		}
	}
}

func TestByID(t *testing.T) {
	d, ok := ByID("weather")
	if !ok {
		t.Fatalf("ByID(weather) not found")
	}
	if d.Title != "Weather" || d.Category != CategorySystem {
		t.Fatalf("ByID(weather) = %+v", d)
	}
	if _, ok := ByID("nope"); ok {
		t.Fatalf("ByID(nope) unexpectedly found")
	}
}

func TestTray_Groupings(t *testing.T) {
	cases := []struct {
		edge Edge
		want int
		cat  Category
	}{
		{EdgeTop, 9, CategorySystem},
		{EdgeLeft, 6, CategorySpecialized},
		{EdgeRight, 6, CategoryAIEngine},
		{EdgeBottom, 0, ""},
	}
	for _, tc := range cases {
		got := Tray(tc.edge)
		if len(got) != tc.want {
			t.Fatalf("Tray(%s) has %d portals, want %d", tc.edge, len(got), tc.want)
		}
		for _, d := range got {
			if d.Category != tc.cat {
				t.Fatalf("Tray(%s) contains %q with category %s", tc.edge, d.ID, d.Category)
			}
		}
	}
}

func TestMatch_TitleAndIDDeduped(t *testing.T) {
	got := Match("weather")
	if len(got) == 0 || got[0].ID != "weather" {
		t.Fatalf("Match(weather) = %+v, want weather first", got)
	}
	counts := map[string]int{}
	for _, d := range got {
		counts[d.ID]++
	}
	for id, n := range counts {
		if n > 1 {
			t.Fatalf("Match returned %q %d times", id, n)
		}
	}
	if got := Match("   "); got != nil {
		t.Fatalf("Match(blank) = %+v, want nil", got)
	}
}
