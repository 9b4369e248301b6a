package deck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"holdem-server/internal/rng"
)

func TestNew(t *testing.T) {
	a := assert.New(t)

	d := New()
	a.Equal(52, d.CardsLeft())
	a.Equal(Card{Rank: 2, Suit: Clubs}, d.Cards[0])
	a.Equal(Card{Rank: 14, Suit: Spades}, d.Cards[51])

	seen := make(map[Card]bool)
	for _, c := range d.Cards {
		seen[c] = true
	}
	a.Len(seen, 52)
}

func TestDeck_Shuffle(t *testing.T) {
	a := assert.New(t)

	d1 := New()
	d1.Shuffle(rng.NewLCG(1))
	d2 := New()
	d2.Shuffle(rng.NewLCG(1))
	a.Equal(d1.HashCode(), d2.HashCode())
	a.NotEqual(New().HashCode(), d1.HashCode())

	d3 := New()
	d3.Shuffle(rng.NewLCG(2))
	a.NotEqual(d1.HashCode(), d3.HashCode())

	// shuffling keeps every card
	seen := make(map[Card]bool)
	for _, c := range d1.Cards {
		seen[c] = true
	}
	a.Len(seen, 52)
}

func TestDeck_ShuffleSwapOrder(t *testing.T) {
	// with a generator that always returns 0, each card at index j is swapped with index 0
	d, err := NewFromCards(CardsFromString("2c,3c,4c"))
	assert.NoError(t, err)

	d.Shuffle(&rng.Fixed{0})
	// j=2: swap(0,2) => 4c,3c,2c; j=1: swap(0,1) => 3c,4c,2c
	assert.Equal(t, "3c,4c,2c", d.Cards.String())
}

func TestDeck_Draw(t *testing.T) {
	a := assert.New(t)
	d := New()

	a.True(d.CanDraw(52))
	a.False(d.CanDraw(53))

	for i := 0; i < 52; i++ {
		card, err := d.Draw()
		a.NoError(err)
		a.False(card.IsZero())
	}

	a.False(d.CanDraw(1))

	card, err := d.Draw()
	a.True(card.IsZero())
	a.Equal(ErrEndOfDeck, err)
}

func TestDeck_DrawN(t *testing.T) {
	a := assert.New(t)
	d, err := NewFromCards(CardsFromString("14s,13s,12s,11s"))
	a.NoError(err)

	cards, err := d.DrawN(3)
	a.NoError(err)
	a.Equal("14s,13s,12s", cards.String())
	a.Equal(1, d.CardsLeft())

	cards, err = d.DrawN(2)
	a.Equal(ErrEndOfDeck, err)
	a.Nil(cards)
	a.Equal(1, d.CardsLeft(), "a failed draw must not consume cards")
}

func TestNewFromCards(t *testing.T) {
	_, err := NewFromCards(CardsFromString("14s,14s"))
	assert.EqualError(t, err, "duplicate card in deck: A♠")

	_, err = NewFromCards(Hand{{}})
	assert.EqualError(t, err, "deck cannot contain a face-down card")
}

func TestSeededSource(t *testing.T) {
	a := assert.New(t)
	start := time.Unix(1700000000, 0)

	d1, err := SeededSource{}.NewDeck("table", start)
	a.NoError(err)
	d2, _ := SeededSource{}.NewDeck("table", start)
	d3, _ := SeededSource{}.NewDeck("table", start.Add(time.Second))

	a.Equal(d1.HashCode(), d2.HashCode())
	a.NotEqual(d1.HashCode(), d3.HashCode())
}

func TestCryptoSource(t *testing.T) {
	d, err := CryptoSource{}.NewDeck("table", time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 52, d.CardsLeft())
}

func TestFixedSource(t *testing.T) {
	a := assert.New(t)
	fs := NewFixedSource(CardsFromString("2c,3c"))
	fs.Push(CardsFromString("4c"))

	d, err := fs.NewDeck("", time.Time{})
	a.NoError(err)
	a.Equal("2c,3c", d.Cards.String())

	d, err = fs.NewDeck("", time.Time{})
	a.NoError(err)
	a.Equal("4c", d.Cards.String())

	_, err = fs.NewDeck("", time.Time{})
	a.EqualError(err, "no fixed decks remaining")
}
