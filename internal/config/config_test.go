package config

import "testing"

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{",", ',', false},
		{";", ';', false},
		{" | ", '|', false},
		{"\t", '\t', false},
		{`\t`, '\t', false},
		{"TAB", '\t', false},
		{"", 0, true},
		{"  ", 0, true},
		{",;", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDelimiter(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseDelimiter(%q) = %q, %v; want %q, err %v", tt.in, got, err, tt.want, tt.wantErr)
			}
		})
	}
}

func TestDelimiter(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]interface{}
		want rune
	}{
		{"unset", nil, ','},
		{"yaml tab", map[string]interface{}{"csv_delimiter": "\t"}, '\t'},
		{"env tab", map[string]interface{}{"csv_delimiter": "tab"}, '\t'},
		{"semicolon", map[string]interface{}{"csv_delimiter": ";"}, ';'},
		{"invalid", map[string]interface{}{"csv_delimiter": "::"}, ','},
		{"not a string", map[string]interface{}{"csv_delimiter": 9}, ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Delimiter(tt.cfg, "csv_delimiter", DefaultCSVDelimiter); got != tt.want {
				t.Errorf("Delimiter = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringTrimsAndDefaults(t *testing.T) {
	cfg := map[string]interface{}{"dir": "  ./inbox  ", "blank": "   "}
	if got := String(cfg, "dir", "x"); got != "./inbox" {
		t.Errorf("String = %q", got)
	}
	if got := String(cfg, "blank", "x"); got != "x" {
		t.Errorf("blank String = %q", got)
	}
}
