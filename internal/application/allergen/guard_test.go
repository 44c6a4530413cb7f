package allergen

import (
	"testing"
	"unicode"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/mealguard/internal/domain/generation"
)

func TestGuardBlocksFirstMatch(t *testing.T) {
	g := NewGuard()

	d := g.Check("milk, eggs", []string{"milk"})

	assert.True(t, d.Blocked)
	assert.Equal(t, "milk", d.MatchedAllergen)
	assert.Equal(t, "milk", d.Token)

	err := d.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrBlocked)
	f, ok := generation.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, generation.ClassSafety, f.Class)
	assert.Equal(t, "milk", f.Allergen)
}

func TestGuardOrdering(t *testing.T) {
	g := NewGuard()

	// input order wins over allergy order
	d := g.Check("tomato eggs milk", []string{"milk", "egg"})
	assert.Equal(t, "egg", d.MatchedAllergen)
	assert.Equal(t, "eggs", d.Token)

	// allergy order breaks ties within one token
	d = g.Check("peanutbutter", []string{"butter", "peanut"})
	assert.Equal(t, "butter", d.MatchedAllergen)
}

func TestGuardBidirectionalAndCaseInsensitive(t *testing.T) {
	g := NewGuard()

	// token contains allergy
	assert.True(t, g.Check("Almond-Milk", []string{"MILK"}).Blocked)
	// allergy contains token
	assert.True(t, g.Check("nut", []string{"peanut"}).Blocked)
	// whitespace and tabs split tokens
	assert.True(t, g.Check("rice\tshrimp\nlime", []string{"Shrimp"}).Blocked)
}

func TestGuardClear(t *testing.T) {
	g := NewGuard()

	assert.False(t, g.Check("tomato, rice", []string{"milk"}).Blocked)
	assert.False(t, g.Check("tomato", nil).Blocked)
	assert.False(t, g.Check("", []string{"milk"}).Blocked)
	assert.False(t, g.Check(" , ,", []string{"milk"}).Blocked)
	assert.False(t, g.Check("tomato", []string{"  "}).Blocked)
	assert.NoError(t, g.Check("tomato", []string{"milk"}).Err())
}

func TestGuardCheckItems(t *testing.T) {
	g := NewGuard()

	d := g.CheckItems([]string{"egg", "tomato"}, []string{"egg"})

	assert.True(t, d.Blocked)
	assert.Equal(t, "egg", d.MatchedAllergen)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"milk", "eggs", "olive", "oil"}, Tokenize(" Milk,EGGS  olive oil,"))
	assert.Empty(t, Tokenize(",,,"))
}

func TestScanEntriesUsesWholeEntries(t *testing.T) {
	entries := []string{"2 tomatoes", "1 cup whole milk", "salt"}

	hit, ok := ScanEntries(entries, []string{"sesame", "Milk"})

	require.True(t, ok)
	assert.Equal(t, 1, hit.Index)
	assert.Equal(t, "milk", hit.Allergen)
	assert.Equal(t, "1 cup whole milk", hit.Entry)

	_, ok = ScanEntries(entries, []string{"whole wheat"})
	assert.False(t, ok, "entries are not tokenized")
}

func TestGuardPropertyFuzzedOverlap(t *testing.T) {
	faker := gofakeit.New(7)
	g := NewGuard()

	for i := 0; i < 200; i++ {
		allergy := faker.LetterN(uint(faker.IntRange(3, 6)))
		prefix := faker.LetterN(uint(faker.IntRange(0, 3)))
		suffix := faker.LetterN(uint(faker.IntRange(0, 3)))
		// embed the allergy with random case inside one token among noise
		token := prefix + allergy + suffix
		input := faker.Vegetable() + ", " + randomCase(faker, token)

		d := g.Check(input, []string{allergy})

		require.True(t, d.Blocked, "input %q allergy %q", input, allergy)
	}
}

func randomCase(f *gofakeit.Faker, s string) string {
	out := []rune(s)
	for i, r := range out {
		if f.Bool() {
			out[i] = unicode.ToUpper(r)
		}
	}
	return string(out)
}
