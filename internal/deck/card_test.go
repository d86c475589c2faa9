package deck

import "testing"

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "pair of eights",
			input: "8s8h",
			expected: []Card{
				{Suit: Spades, Rank: Eight},
				{Suit: Hearts, Rank: Eight},
			},
		},
		{
			name:  "faces and ace",
			input: "AhKdQcJs",
			expected: []Card{
				{Suit: Hearts, Rank: Ace},
				{Suit: Diamonds, Rank: King},
				{Suit: Clubs, Rank: Queen},
				{Suit: Spades, Rank: Jack},
			},
		},
		{
			name:  "spaces between cards",
			input: "Th 7c",
			expected: []Card{
				{Suit: Hearts, Rank: Ten},
				{Suit: Clubs, Rank: Seven},
			},
		},
		{
			name:  "case insensitive",
			input: "asKHqD",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
				{Suit: Diamonds, Rank: Queen},
			},
		},
		{
			name:    "invalid rank",
			input:   "XsKs",
			wantErr: true,
		},
		{
			name:    "invalid suit",
			input:   "AsKx",
			wantErr: true,
		},
		{
			name:    "odd length",
			input:   "AsK",
			wantErr: true,
		},
		{
			name:     "empty string",
			input:    "",
			expected: []Card{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCards() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !cardsEqual(got, tt.expected) {
				t.Errorf("ParseCards() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseCardTen(t *testing.T) {
	card, err := ParseCard("10d")
	if err != nil {
		t.Fatalf("ParseCard(10d) error = %v", err)
	}
	if card != NewCard(Ten, Diamonds) {
		t.Errorf("ParseCard(10d) = %v, want T♦", card)
	}
	if card.Code() != "Td" {
		t.Errorf("Code() = %q, want Td", card.Code())
	}
}

func TestMustParseCards(t *testing.T) {
	cards := MustParseCards("AsKs")
	expected := []Card{
		{Suit: Spades, Rank: Ace},
		{Suit: Spades, Rank: King},
	}
	if !cardsEqual(cards, expected) {
		t.Errorf("MustParseCards() = %v, want %v", cards, expected)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("MustParseCards() should panic on invalid input")
		}
	}()
	MustParseCards("invalid")
}

func TestRankPoints(t *testing.T) {
	tests := map[Rank]int{
		Two: 2, Five: 5, Nine: 9, Ten: 10,
		Jack: 10, Queen: 10, King: 10, Ace: 11,
	}
	for rank, want := range tests {
		if got := rank.Points(); got != want {
			t.Errorf("%s.Points() = %d, want %d", rank, got, want)
		}
	}
}

func TestCardString(t *testing.T) {
	if got := NewCard(Ace, Spades).String(); got != "A♠" {
		t.Errorf("String() = %q, want A♠", got)
	}
	if got := NewCard(Seven, Hearts).String(); got != "7♥" {
		t.Errorf("String() = %q, want 7♥", got)
	}
	if !NewCard(Two, Diamonds).IsRed() || NewCard(Two, Clubs).IsRed() {
		t.Error("IsRed() mismatch")
	}
}

func cardsEqual(a, b []Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Rank != b[i].Rank || a[i].Suit != b[i].Suit {
			return false
		}
	}
	return true
}
