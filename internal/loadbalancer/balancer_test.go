package loadbalancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-gateway/internal/model"
)

func inst(id string, weight interface{}) *model.Instance {
	i := &model.Instance{ID: id, TemplateName: "demo", Transport: model.HTTPTransport{Endpoint: "http://x/" + id}, Status: model.StatusHealthy, IsActive: true}
	if weight != nil {
		i.Metadata = map[string]interface{}{"weight": weight}
	}
	return i
}

func TestSelectEmptyCandidatesReturnsNil(t *testing.T) {
	b := New()
	assert.Nil(t, b.Select("demo", nil, model.StrategyRoundRobin))
}

func TestRoundRobinCyclesInOrderIndependentPerTemplate(t *testing.T) {
	b := New()
	candidates := []*model.Instance{inst("a", nil), inst("b", nil), inst("c", nil)}

	var picks []string
	for i := 0; i < 6; i++ {
		picks = append(picks, b.Select("demo", candidates, model.StrategyRoundRobin).ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, picks)

	// a different template's cursor must not be perturbed by "demo"'s picks.
	other := b.Select("other", candidates, model.StrategyRoundRobin)
	assert.Equal(t, "a", other.ID)
}

func TestUnrecognizedStrategyFallsBackToRoundRobin(t *testing.T) {
	b := New()
	candidates := []*model.Instance{inst("a", nil), inst("b", nil)}
	first := b.Select("demo", candidates, model.Strategy("nonsense"))
	second := b.Select("demo", candidates, model.Strategy("nonsense"))
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "b", second.ID)
}

func TestLeastConnectionsPicksFewestActive(t *testing.T) {
	b := New()
	a, c := inst("a", nil), inst("b", nil)
	candidates := []*model.Instance{a, c}

	b.RecordRequestStart(a)
	b.RecordRequestStart(a)
	b.RecordRequestStart(c)

	picked := b.Select("demo", candidates, model.StrategyLeastConnections)
	assert.Equal(t, "b", picked.ID)
}

func TestLeastConnectionsTieBreaksFirstInList(t *testing.T) {
	b := New()
	candidates := []*model.Instance{inst("a", nil), inst("b", nil)}
	picked := b.Select("demo", candidates, model.StrategyLeastConnections)
	assert.Equal(t, "a", picked.ID)
}

func TestWeightedSelectionMatchesRatioOverFullCycle(t *testing.T) {
	b := New()
	candidates := []*model.Instance{inst("a", 3), inst("b", 1)}

	counts := map[string]int{}
	for i := 0; i < 4; i++ {
		counts[b.Select("demo", candidates, model.StrategyWeighted).ID]++
	}
	assert.Equal(t, 3, counts["a"])
	assert.Equal(t, 1, counts["b"])
}

func TestWeightedZeroWeightFallsBackToRoundRobin(t *testing.T) {
	b := New()
	candidates := []*model.Instance{inst("a", 0), inst("b", 0)}
	// Weight() floors non-positive values to 1, so this also exercises the
	// "all weights default to 1" path producing a plain rotation.
	first := b.Select("demo", candidates, model.StrategyWeighted)
	second := b.Select("demo", candidates, model.StrategyWeighted)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestHealthBasedFiltersToLowestFailureCount(t *testing.T) {
	b := New()
	low1 := inst("low1", nil)
	low1.ConsecutiveFailures = 0
	low2 := inst("low2", nil)
	low2.ConsecutiveFailures = 0
	high := inst("high", nil)
	high.ConsecutiveFailures = 4
	candidates := []*model.Instance{low1, high, low2}

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		seen[b.Select("demo", candidates, model.StrategyHealthBased).ID] = true
	}
	assert.True(t, seen["low1"])
	assert.True(t, seen["low2"])
	assert.False(t, seen["high"], "instance with more failures must never be picked while a lower-failure candidate exists")
}

func TestRandomNeverPicksOutsideCandidates(t *testing.T) {
	b := New()
	candidates := []*model.Instance{inst("a", nil), inst("b", nil), inst("c", nil)}
	valid := map[string]bool{"a": true, "b": true, "c": true}
	for i := 0; i < 50; i++ {
		picked := b.Select("demo", candidates, model.StrategyRandom)
		require.True(t, valid[picked.ID])
	}
}

func TestRecordRequestEndDecrementsActiveConnections(t *testing.T) {
	b := New()
	a := inst("a", nil)
	b.RecordRequestStart(a)
	b.RecordRequestStart(a)
	b.RecordRequestEnd(a, true)

	stats := b.Stats()
	assert.Equal(t, 1, stats.PerInstance["a"].ActiveConnections)
	assert.Equal(t, 2, stats.PerInstance["a"].RequestCount)
	assert.Equal(t, 2, stats.TotalRequests)
}

func TestRecordRequestEndNeverGoesNegative(t *testing.T) {
	b := New()
	a := inst("a", nil)
	b.RecordRequestEnd(a, false)
	stats := b.Stats()
	assert.Equal(t, 0, stats.PerInstance["a"].ActiveConnections)
}

func TestRecordRequestEndTracksConsecutiveFailures(t *testing.T) {
	b := New()
	a := inst("a", nil)

	b.RecordRequestEnd(a, false)
	b.RecordRequestEnd(a, false)
	b.RecordRequestEnd(a, false)
	assert.Equal(t, 3, b.Stats().PerInstance["a"].ConsecutiveFailures)

	b.RecordRequestEnd(a, true)
	assert.Equal(t, 0, b.Stats().PerInstance["a"].ConsecutiveFailures, "a success must reset the streak")
}

func TestAvailableStrategiesListsAllFive(t *testing.T) {
	b := New()
	assert.Len(t, b.Stats().AvailableStrategies, 5)
}
