package dialect

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Kind
		wantErr bool
	}{
		{name: "oracle lowercase", input: "oracle", want: Oracle},
		{name: "mixed case", input: "PostgreSQL", want: Postgres},
		{name: "uppercase", input: "MYSQL", want: MySQL},
		{name: "sqlserver", input: "sqlserver", want: SQLServer},
		{name: "surrounding whitespace", input: "  oracle ", want: Oracle},
		{name: "unsupported", input: "mongodb", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		kind Kind
		n    int
		want string
	}{
		{Oracle, 1, ":1"},
		{Oracle, 12, ":12"},
		{MySQL, 1, "?"},
		{MySQL, 5, "?"},
		{Postgres, 1, "$1"},
		{Postgres, 3, "$3"},
		{SQLServer, 1, "@p1"},
		{SQLServer, 2, "@p2"},
	}

	for _, tt := range tests {
		if got := Placeholder(tt.kind, tt.n); got != tt.want {
			t.Errorf("Placeholder(%v, %d) = %q, want %q", tt.kind, tt.n, got, tt.want)
		}
	}
}

func TestPingSQL(t *testing.T) {
	if got := PingSQL(Oracle); got != "SELECT 1 FROM DUAL" {
		t.Errorf("PingSQL(Oracle) = %q", got)
	}
	for _, k := range []Kind{MySQL, Postgres, SQLServer} {
		if got := PingSQL(k); got != "SELECT 1" {
			t.Errorf("PingSQL(%v) = %q", k, got)
		}
	}
}
