package recon

import "testing"

func TestUnitID(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"153289.pdf", "153289", true},
		{"153289_SIAFI.xlsx", "153289", true},
		{"9.csv", "9", true},
		{"UG153289.pdf", "", false},
		{"", "", false},
		{" 12.pdf", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := UnitID(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("UnitID(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPairUnits(t *testing.T) {
	reports := []string{"153289.pdf", "200100.pdf", "relatorio.pdf"}
	ledgers := []string{"153289_SIAFI.xlsx", "9.csv"}
	units := PairUnits(reports, ledgers, func(s string) string { return s })

	if len(units) != 3 {
		t.Fatalf("got %d units, want 3: %+v", len(units), units)
	}
	wantIDs := []string{"153289", "200100", "9"}
	for i, u := range units {
		if u.ID != wantIDs[i] {
			t.Errorf("unit %d id = %q, want %q", i, u.ID, wantIDs[i])
		}
	}

	var pairable []string
	for _, u := range units {
		if u.Pairable() {
			pairable = append(pairable, u.ID)
		}
	}
	if len(pairable) != 1 || pairable[0] != "153289" {
		t.Errorf("pairable = %v, want [153289]", pairable)
	}
	if *units[0].Report != "153289.pdf" || *units[0].Ledger != "153289_SIAFI.xlsx" {
		t.Errorf("unit 153289 sources = %q / %q", *units[0].Report, *units[0].Ledger)
	}
	if units[2].Report != nil || units[2].Ledger == nil {
		t.Errorf("unit 9 should only have a ledger")
	}
}

func TestPairUnitsLaterSourceReplaces(t *testing.T) {
	reports := []string{"1.pdf", "1_v2.pdf"}
	ledgers := []string{"1.csv"}
	units := PairUnits(reports, ledgers, func(s string) string { return s })
	if len(units) != 1 || *units[0].Report != "1_v2.pdf" {
		t.Errorf("units = %+v", units)
	}
}
