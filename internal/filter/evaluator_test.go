package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/listingwatch/internal/listing"
	"sjsage522/listingwatch/pkg/errors"
)

func product(name string, price int) listing.Record {
	return listing.NewRecord(map[string]listing.Value{
		"name":  listing.String(name),
		"price": listing.Int(price),
	})
}

func TestMatch(t *testing.T) {
	record := listing.NewRecord(map[string]listing.Value{
		"name":  listing.String("some name"),
		"price": listing.Int(10),
	})

	testCases := []struct {
		rule     string
		expected bool
	}{
		{"caca~maca", false},
		{"caca!~caca", false},
		{"price<9", false},
		{"price>11", false},
		{"price<10", false},
		{"price<11", true},
		{"price>9", true},
		{"name~(some|caca)", true},
		{"name!~caca", true},
		{"name~ame", true},
		{"name~^ame", false},
		{"NAME~some", true},
		{"price~^1", true},
	}

	for _, tc := range testCases {
		matched, err := Match(record, MustParse(tc.rule)[0])
		require.NoError(t, err, tc.rule)
		assert.Equal(t, tc.expected, matched, tc.rule)
	}
}

func TestMatch_StringNumber(t *testing.T) {
	record := listing.NewRecord(map[string]listing.Value{
		"frecventa": listing.String("1730"),
	})

	matched, err := Match(record, MustParse("frecventa>1700")[0])
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestMatch_NotInteger(t *testing.T) {
	record := listing.NewRecord(map[string]listing.Value{
		"garantie": listing.String("12 luni"),
	})

	_, err := Match(record, MustParse("garantie<24")[0])
	require.Error(t, err)

	var evalErr *errors.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "garantie", evalErr.Attribute)
	assert.Equal(t, "LESS", evalErr.Kind)

	_, err = Match(record, MustParse("garantie>24")[0])
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "GREATER", evalErr.Kind)

	matched, err := Match(record, MustParse("garantie~luni")[0])
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestMatch_MissingAttribute(t *testing.T) {
	record := product("foo", 10)

	for _, rule := range []string{"missing<1", "missing>1", "missing~x", "missing!~x"} {
		matched, err := Match(record, MustParse(rule)[0])
		assert.NoError(t, err, rule)
		assert.False(t, matched, rule)
	}
}

func TestFilter_EmptyExpressionCopies(t *testing.T) {
	records := []listing.Record{product("a", 1), product("b", 2), product("c", 3)}

	filtered, err := Filter(records, Expression{})
	require.NoError(t, err)
	require.Len(t, filtered, len(records))
	for i := range records {
		assert.True(t, records[i].Equal(filtered[i]))
	}
	assert.NotSame(t, &records[0], &filtered[0])

	filtered, err = Apply(records, "")
	require.NoError(t, err)
	assert.Len(t, filtered, 3)
	assert.NotSame(t, &records[0], &filtered[0])
}

func TestFilter_EmptyInput(t *testing.T) {
	filtered, err := Filter(nil, MustParse("price<1"))
	require.NoError(t, err)
	assert.NotNil(t, filtered)
	assert.Empty(t, filtered)
}

func TestFilter_AndSemantics(t *testing.T) {
	records := []listing.Record{product("caca", 200), product("caca", 400), product("maca", 100)}

	filtered, err := Apply(records, "name~caca")
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	filtered, err = Apply(records, "name~caca,price<300")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 200, filtered[0].Number("price"))

	filtered, err = Apply(records, "price>50")
	require.NoError(t, err)
	require.Len(t, filtered, 3)
	assert.Equal(t, "caca", filtered[0].Name())
	assert.Equal(t, "maca", filtered[2].Name(), "input order is preserved")
}

func TestFilter_ShortCircuit(t *testing.T) {
	records := []listing.Record{
		listing.NewRecord(map[string]listing.Value{
			"name":     listing.String("foo"),
			"garantie": listing.String("12 luni"),
		}),
	}

	// the first rule fails, so the non-integer garantie is never evaluated
	filtered, err := Apply(records, "name~bar,garantie<24")
	require.NoError(t, err)
	assert.Empty(t, filtered)

	_, err = Apply(records, "name~foo,garantie<24")
	require.Error(t, err)
	assert.True(t, errors.IsEvaluation(err))
}

func TestApply_ParseError(t *testing.T) {
	_, err := Apply([]listing.Record{product("a", 1)}, "price<abc")
	require.Error(t, err)
	assert.True(t, errors.IsExpression(err))
}

type recordingObserver struct {
	matched  int
	rejected int
	sources  []string
}

func (o *recordingObserver) RecordDecision(source string, matched bool) {
	o.sources = append(o.sources, source)
	if matched {
		o.matched++
	} else {
		o.rejected++
	}
}

func TestEngine_Observer(t *testing.T) {
	observer := &recordingObserver{}
	engine := NewEngine("lichidari", observer)

	records := []listing.Record{product("a", 1), product("b", 50), product("c", 100)}
	filtered, err := engine.Filter(records, MustParse("price<60"))
	require.NoError(t, err)

	assert.Len(t, filtered, 2)
	assert.Equal(t, 2, observer.matched)
	assert.Equal(t, 1, observer.rejected)
	assert.Equal(t, []string{"lichidari", "lichidari", "lichidari"}, observer.sources)
}

func TestFilter_Reusable(t *testing.T) {
	expr := MustParse("price<100")
	records := []listing.Record{product("a", 10), product("b", 200)}

	for i := 0; i < 3; i++ {
		filtered, err := Filter(records, expr)
		require.NoError(t, err)
		assert.Len(t, filtered, 1)
	}
	assert.Equal(t, "price<100", expr.String())
}
