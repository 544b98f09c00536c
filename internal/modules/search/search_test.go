package search

import (
	"net/http/httptest"
	"testing"

	"github.com/georgemunganga/exhibition-crm/internal/modules/access"
	"github.com/georgemunganga/exhibition-crm/internal/modules/contact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtures() []*contact.Contact {
	return []*contact.Contact{
		{Name: "Alex Papas", Company: "Sea View", Email: "alex@seaview.gr", Phone: "555-123-4567", BusinessType: contact.BusinessHotels, Priority: 9, OwnerID: "u1", SalesPerson: "alice@bn-group.gr"},
		{Name: "Maria", Company: "Blue Cafe", Email: "maria@blue.gr", Phone: "2101234567", BusinessType: contact.BusinessCafeRestaurant, Priority: 6, OwnerID: "u2", SalesPerson: "bob@bn-group.gr"},
		{Name: "Nikos", Company: "", Email: "", Phone: "", BusinessType: contact.BusinessHotels, Priority: 3, OwnerID: "u1", SalesPerson: "alice@bn-group.gr"},
		{Name: "Eleni", Company: "Airstay", Email: "eleni@airstay.com", Phone: "6901112222", BusinessType: contact.BusinessAirbnbs, Priority: 8, OwnerID: "u2", SalesPerson: "bob@bn-group.gr"},
	}
}

func names(cs []*contact.Contact) []string {
	out := []string{}
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func TestParseBand(t *testing.T) {
	for in, want := range map[string]Band{
		"": BandAll, "all": BandAll, "low": BandLow, "1-4": BandLow,
		"Medium": BandMedium, "5-7": BandMedium, "high": BandHigh, "8-10": BandHigh,
	} {
		got, err := ParseBand(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseBand("urgent")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	all := fixtures()

	cases := []struct {
		name string
		crit Criteria
		want []string
	}{
		{"no filters", Criteria{}, []string{"Alex Papas", "Maria", "Nikos", "Eleni"}},
		{"text in name, case-insensitive", Criteria{Text: "alex"}, []string{"Alex Papas"}},
		{"text in company", Criteria{Text: "blue"}, []string{"Maria"}},
		{"text in email", Criteria{Text: "AIRSTAY.COM"}, []string{"Eleni"}},
		{"raw phone", Criteria{Text: "555-123"}, []string{"Alex Papas"}},
		{"phone digits across formatting", Criteria{Text: "1234567"}, []string{"Alex Papas", "Maria"}},
		{"business type", Criteria{BusinessType: "hotels"}, []string{"Alex Papas", "Nikos"}},
		{"business type all", Criteria{BusinessType: "all"}, []string{"Alex Papas", "Maria", "Nikos", "Eleni"}},
		{"high band", Criteria{Band: BandHigh}, []string{"Alex Papas", "Eleni"}},
		{"medium band", Criteria{Band: BandMedium}, []string{"Maria"}},
		{"low band", Criteria{Band: BandLow}, []string{"Nikos"}},
		{"owner by email", Criteria{Owner: "bob@bn-group.gr"}, []string{"Maria", "Eleni"}},
		{"owner by id", Criteria{Owner: "u1"}, []string{"Alex Papas", "Nikos"}},
		{"combined", Criteria{BusinessType: "hotels", Band: BandHigh, Text: "sea"}, []string{"Alex Papas"}},
		{"nothing matches", Criteria{Text: "zzz"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, names(Apply(all, tc.crit)))
		})
	}
}

func TestApply_OrderOfPredicatesIsIrrelevant(t *testing.T) {
	all := fixtures()
	crit := Criteria{Text: "a", BusinessType: "hotels", Band: BandHigh, Owner: "u1"}
	preds := crit.Predicates()
	require.Len(t, preds, 4)

	want := names(Apply(all, crit))
	reversed := []Predicate{preds[3], preds[2], preds[1], preds[0]}
	assert.Equal(t, want, names(Filter(all, reversed...)))

	// one predicate at a time, chained
	chained := all
	for _, p := range []Predicate{preds[2], preds[0], preds[3], preds[1]} {
		chained = Filter(chained, p)
	}
	assert.Equal(t, want, names(chained))

	// idempotent
	assert.Equal(t, want, names(Apply(Apply(all, crit), crit)))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	all := fixtures()
	before := names(all)
	_ = Apply(all, Criteria{Band: BandLow})
	assert.Equal(t, before, names(all))
}

func TestForCaller(t *testing.T) {
	crit := Criteria{Owner: "u2", Text: "x"}
	user := &access.Identity{ID: "u1", Role: access.RoleUser}
	admin := &access.Identity{ID: "a1", Role: access.RoleAdmin}

	assert.Equal(t, "", crit.ForCaller(user).Owner)
	assert.Equal(t, "x", crit.ForCaller(user).Text)
	assert.Equal(t, "u2", crit.ForCaller(admin).Owner)
}

func TestOwners(t *testing.T) {
	assert.Equal(t, []string{"alice@bn-group.gr", "bob@bn-group.gr"}, Owners(fixtures()))
	assert.Empty(t, Owners(nil))
}

func TestCriteriaFromQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/contacts?q=alex&business_type=hotels&priority=8-10&owner=u1", nil)
	crit, err := CriteriaFromQuery(r)
	require.NoError(t, err)
	assert.Equal(t, Criteria{Text: "alex", BusinessType: "hotels", Band: BandHigh, Owner: "u1"}, crit)

	_, err = CriteriaFromQuery(httptest.NewRequest("GET", "/api/v1/contacts?priority=9", nil))
	assert.Error(t, err)
}
