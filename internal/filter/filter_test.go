package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type record struct {
	status string
	fields []string
}

func (r record) FilterStatus() string   { return r.status }
func (r record) SearchFields() []string { return r.fields }

func fixtures() []record {
	return []record{
		{status: "PENDING", fields: []string{"Asha Kumar", "S1", "fever"}},
		{status: "approved", fields: []string{"Ravi", "S2", "wedding"}},
		{status: "REJECTED", fields: []string{"Meena", "", "Family function"}},
		{status: "", fields: nil},
	}
}

func TestApplyIdentity(t *testing.T) {
	items := fixtures()
	assert.Equal(t, items, Apply(items, Criteria{Status: "all"}))
	assert.Equal(t, items, Apply(items, Criteria{Status: "ALL", Query: "   "}))
	assert.Equal(t, items, Apply(items, Criteria{}))
}

func TestApplyStatusIsCaseInsensitiveExact(t *testing.T) {
	got := Apply(fixtures(), Criteria{Status: "Approved"})
	assert.Len(t, got, 1)
	assert.Equal(t, "Ravi", got[0].fields[0])

	assert.Empty(t, Apply(fixtures(), Criteria{Status: "APPROVE"}))
}

func TestApplyQueryMatchesAnyField(t *testing.T) {
	got := Apply(fixtures(), Criteria{Query: "FAMILY"})
	assert.Len(t, got, 1)
	assert.Equal(t, "Meena", got[0].fields[0])

	got = Apply(fixtures(), Criteria{Query: "s"})
	assert.Len(t, got, 2)
}

func TestApplyCombinesStatusAndQuery(t *testing.T) {
	assert.Len(t, Apply(fixtures(), Criteria{Status: "pending", Query: "asha"}), 1)
	assert.Empty(t, Apply(fixtures(), Criteria{Status: "rejected", Query: "asha"}))
}

func TestApplyNeverMatchesMissingFields(t *testing.T) {
	assert.Empty(t, Apply([]record{{}}, Criteria{Query: "x"}))
	assert.NotNil(t, Apply([]record{}, Criteria{Query: "x"}))
}

func TestApplyPropertyEveryResultMatches(t *testing.T) {
	queries := []string{"a", "S", "wed", "zzz", "i"}
	for _, q := range queries {
		for _, item := range Apply(fixtures(), Criteria{Query: q}) {
			assert.True(t, matchesQuery(item.SearchFields(), strings.ToLower(q)), q)
		}
	}
}
