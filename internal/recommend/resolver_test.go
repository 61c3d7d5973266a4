package recommend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/statsmd/internal/catalog"
	"github.com/p-n-ai/statsmd/internal/recommend"
)

func TestRelevantAssumptions_AssumptionTableOrder(t *testing.T) {
	c := defaultCatalog(t)
	test, ok := c.Test("independent-t-test")
	require.True(t, ok)

	got := recommend.RelevantAssumptions(c.Assumptions(), test)

	var gotIDs []catalog.AssumptionType
	for _, a := range got {
		gotIDs = append(gotIDs, a.ID)
	}
	assert.Equal(t, []catalog.AssumptionType{catalog.Normality, catalog.Homoscedasticity, catalog.Independence}, gotIDs)
}

func TestAlternatives_HomoscedasticityGivesWelch(t *testing.T) {
	c := defaultCatalog(t)

	got := recommend.Alternatives(c.Tests(), "independent-t-test", recommend.NewViolationSet(catalog.Homoscedasticity))
	require.NotEmpty(t, got)
	assert.Equal(t, "welch-t-test", got[0].ID)
}

func TestAlternatives_WelchRemovedGivesNothingForIt(t *testing.T) {
	tests := []catalog.StatisticalTest{
		{ID: "independent-t-test", Alternatives: []string{"welch-t-test"}},
		{ID: "mann-whitney-u"},
	}

	got := recommend.Alternatives(tests, "independent-t-test", recommend.NewViolationSet(catalog.Homoscedasticity))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAlternatives_EmptyViolatedSet(t *testing.T) {
	c := defaultCatalog(t)

	for _, test := range c.Tests() {
		assert.Empty(t, recommend.Alternatives(c.Tests(), test.ID, recommend.NewViolationSet()), test.ID)
		assert.Empty(t, recommend.Alternatives(c.Tests(), test.ID, nil), test.ID)
	}
}

func TestAlternatives_DropsDanglingIDs(t *testing.T) {
	tests := []catalog.StatisticalTest{
		{ID: "t", Alternatives: []string{"ghost", "b", "a"}},
		{ID: "a"},
		{ID: "b"},
	}

	got := recommend.Alternatives(tests, "t", recommend.NewViolationSet(catalog.Normality))
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestAlternatives_UnknownTest(t *testing.T) {
	c := defaultCatalog(t)

	got := recommend.Alternatives(c.Tests(), "no-such-test", recommend.NewViolationSet(catalog.Normality))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
