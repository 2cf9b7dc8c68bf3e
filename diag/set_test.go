package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/otel-weaver/diag"
)

func TestSetFatalOnParseError(t *testing.T) {
	s := diag.NewSet()
	s.Add(diag.NewUnknownAttribute(diag.Location{Source: "a.yaml"}, "url.scheme"))
	assert.False(t, s.Fatal(), "a recoverable diagnostic must not make the set fatal")

	s.Add(diag.NewParseError(diag.Location{Source: "a.yaml", Line: 3}, "unknown field"))
	assert.True(t, s.Fatal(), "a ParseError must make the set fatal")
}

func TestSetAddIgnoresNil(t *testing.T) {
	s := diag.NewSet()
	var d diag.Diagnostic
	s.Add(d)
	assert.True(t, s.Empty())
}

func TestSetMerge(t *testing.T) {
	a := diag.NewSet()
	a.Add(diag.NewUnknownExtends(diag.Location{Source: "a.yaml"}, "server"))

	b := diag.NewSet()
	b.Add(diag.NewDuplicateGroupID(diag.Location{Source: "b.yaml"}, "server"))

	a.Merge(b)
	require.Len(t, a.All(), 2)
}

func TestLocationString(t *testing.T) {
	cases := []struct {
		loc  diag.Location
		want string
	}{
		{diag.Location{}, "<unknown>"},
		{diag.Location{Source: "a.yaml"}, "a.yaml"},
		{diag.Location{Source: "a.yaml", Line: 5}, "a.yaml:5"},
		{diag.Location{Source: "a.yaml", Line: 5, Column: 9}, "a.yaml:5:9"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.loc.String())
	}
}
