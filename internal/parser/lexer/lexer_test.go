package lexer

import (
	"errors"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `(Toplam Fosfor + 0,5) * 2 >= İletkenlik / "Nitrat-N"`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{PAREN_OPEN, "("},
		{IDENTIFIER, "Toplam Fosfor"},
		{PLUS, "+"},
		{NUMBER, "0,5"},
		{PAREN_CLOSE, ")"},
		{ASTERISK, "*"},
		{NUMBER, "2"},
		{GTE, ">="},
		{IDENTIFIER, "İletkenlik"},
		{SLASH, "/"},
		{IDENTIFIER, "Nitrat-N"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestComparisonOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"a > b", []TokenType{IDENTIFIER, GT, IDENTIFIER}},
		{"a >= b", []TokenType{IDENTIFIER, GTE, IDENTIFIER}},
		{"a < b", []TokenType{IDENTIFIER, LT, IDENTIFIER}},
		{"a <= b", []TokenType{IDENTIFIER, LTE, IDENTIFIER}},
		{"a == b", []TokenType{IDENTIFIER, EQ, IDENTIFIER}},
		{"a = b", []TokenType{IDENTIFIER, EQ, IDENTIFIER}},
		{"a != b", []TokenType{IDENTIFIER, NEQ, IDENTIFIER}},
		{"a <> b", []TokenType{IDENTIFIER, NEQ, IDENTIFIER}},
		{"a >< b", []TokenType{IDENTIFIER, GT, LT, IDENTIFIER}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tokens) != len(tt.expected) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.expected), len(tokens), tokens)
			}
			for i, want := range tt.expected {
				if tokens[i].Type != want {
					t.Errorf("token %d: expected %s, got %s", i, want, tokens[i].Type)
				}
			}
		})
	}
}

func TestIdentifierRuns(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		literal string
		kind    TokenType
	}{
		{"internal spaces kept", "  Askıda Katı Madde  ", "Askıda Katı Madde", IDENTIFIER},
		{"digits inside name", "BOİ5", "BOİ5", IDENTIFIER},
		{"leading digit name", "5 Günlük BOİ", "5 Günlük BOİ", IDENTIFIER},
		{"plain number", "500", "500", NUMBER},
		{"leading dot number", ".5", ".5", NUMBER},
		{"exponent", "1e3", "1e3", NUMBER},
		{"signed exponent", "1e-3", "1e-3", NUMBER},
		{"grouped decimal comma", "1.000,5", "1.000,5", NUMBER},
		{"grouped decimal point", "1,000.5", "1,000.5", NUMBER},
		{"nan is a name", "NaN", "NaN", IDENTIFIER},
		{"backtick quoted", "`pH-değeri`", "pH-değeri", IDENTIFIER},
		// "İ" written as I + combining dot above
		{"decomposed normalized", "I\u0307letkenlik", "\u0130letkenlik", IDENTIFIER},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tokens) != 1 {
				t.Fatalf("expected 1 token, got %d: %v", len(tokens), tokens)
			}
			if tokens[0].Type != tt.kind {
				t.Errorf("expected %s, got %s", tt.kind, tokens[0].Type)
			}
			if tokens[0].Literal != tt.literal {
				t.Errorf("expected literal %q, got %q", tt.literal, tokens[0].Literal)
			}
		})
	}
}

func TestExponentSignStaysInNumeral(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"A > 1e-3", []TokenType{IDENTIFIER, GT, NUMBER}},
		{"A > 2E+2 - 1", []TokenType{IDENTIFIER, GT, NUMBER, MINUS, NUMBER}},
		{"Fe-3 > 1", []TokenType{IDENTIFIER, MINUS, NUMBER, GT, NUMBER}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tokens) != len(tt.expected) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.expected), len(tokens), tokens)
			}
			for i, want := range tt.expected {
				if tokens[i].Type != want {
					t.Errorf("token %d: expected %s, got %s", i, want, tokens[i].Type)
				}
			}
		})
	}
}

func TestTokenPositions(t *testing.T) {
	tokens, err := Tokenize("İletkenlik > 500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantPos := []int{0, 11, 13}
	for i, pos := range wantPos {
		if tokens[i].Pos != pos {
			t.Errorf("token %d: expected pos %d, got %d", i, pos, tokens[i].Pos)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		input string
		pos   int
	}{
		{"a ! b", 2},
		{`"unterminated > 5`, 0},
		{"a > 5 `x", 6},
		{"a > 1e", 4},
		{"a > 1,2,3", 4},
		{"a > 1e-", 4},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var lexErr *Error
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if lexErr.Pos != tt.pos {
				t.Errorf("expected pos %d, got %d", tt.pos, lexErr.Pos)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		lit  string
		want float64
	}{
		{"500", 500},
		{"12,5", 12.5},
		{"0.25", 0.25},
		{"2e2", 200},
		{"1e-3", 0.001},
		{"1.000,5", 1000.5},
	}
	for _, tt := range tests {
		got, err := ParseNumber(tt.lit)
		if err != nil {
			t.Errorf("ParseNumber(%q): unexpected error %v", tt.lit, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.lit, got, tt.want)
		}
	}

	for _, bad := range []string{"1,2,3", "1e", "NaN"} {
		if _, err := ParseNumber(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
