package extras

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	e := Extras{}.WithGenre("Sci-Fi & Fantasy").WithSearch("the office").WithSkip(40)
	assert.Equal(t, "genre=Sci-Fi%20%26%20Fantasy&search=the%20office&skip=40", Encode(e))

	assert.Equal(t, "", Encode(Extras{}))
	assert.Equal(t, "skip=0", Encode(Extras{}.WithSkip(0)))
}

func TestRoundTrip(t *testing.T) {
	values := []Extras{
		{},
		Extras{}.WithGenre("Action"),
		Extras{}.WithSearch("amélie 2001"),
		Extras{}.WithSearch("a+b=c&d"),
		Extras{}.WithSkip(0),
		Extras{}.WithGenre("Drama").WithSkip(100),
		Extras{}.WithGenre("10759").WithSearch("50% off / 100").WithSkip(20),
	}

	for _, e := range values {
		assert.Equal(t, e, Decode(Encode(e)), "round trip of %q", Encode(e))
	}
}

func TestDecodeFailSoft(t *testing.T) {
	invalid := []string{
		"not=valid&garbage",
		"garbage",
		"skip=abc",
		"skip=-1",
		"genre=a&genre=b",
		"unknown=1",
		"search=%zz",
		"search=" + strings.Repeat("x", 201),
		"genre=Action&",
	}

	for _, raw := range invalid {
		assert.True(t, Decode(raw).IsEmpty(), "expected empty extras for %q", raw)
	}
}

func TestDecode(t *testing.T) {
	e := Decode("skip=20&genre=Comedy")
	assert.Equal(t, "Comedy", e.Genre)
	assert.Equal(t, 20, e.SkipValue())
	assert.Equal(t, 2, e.Page(20))

	assert.True(t, Decode("").IsEmpty())
	assert.Equal(t, 1, Decode("").Page(20))
}

func TestWithPreservesOtherFields(t *testing.T) {
	base := Extras{}.WithGenre("Horror").WithSkip(10)
	changed := base.WithSearch("it")

	assert.Equal(t, "Horror", changed.Genre)
	assert.Equal(t, 10, changed.SkipValue())
	assert.Equal(t, "it", changed.Search)

	assert.Empty(t, base.Search)

	reset := changed.WithSkip(30)
	assert.Equal(t, 10, changed.SkipValue())
	assert.Equal(t, 30, reset.SkipValue())
	assert.Nil(t, reset.WithoutSkip().Skip)
	assert.Equal(t, 30, reset.SkipValue())
}
