package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResolvesEndpoints(t *testing.T) {
	data := []byte(`{
		"nodes": [
			{"id": "a", "group": "core", "size": 8},
			{"id": "b", "group": "io"}
		],
		"links": [
			{"source": "a", "target": "b", "value": 2}
		]
	}`)

	s, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, s.Nodes, 2)
	require.Len(t, s.Links, 1)

	l := s.Links[0]
	require.NotNil(t, l.SourceNode())
	require.NotNil(t, l.TargetNode())
	assert.Equal(t, "a", l.SourceNode().ID)
	assert.Equal(t, "b", l.TargetNode().ID)

	n, ok := s.Node("a")
	require.True(t, ok)
	assert.Equal(t, 8.0, n.Size)
}

func TestParseRejectsBadJSON(t *testing.T) {
	_, err := Parse([]byte(`{"nodes": [`))
	require.Error(t, err)
}

func TestResolveUnknownLinkEndpoint(t *testing.T) {
	for name, data := range map[string]string{
		"source": `{"nodes":[{"id":"a"}],"links":[{"source":"ghost","target":"a"}]}`,
		"target": `{"nodes":[{"id":"a"}],"links":[{"source":"a","target":"ghost"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			require.ErrorIs(t, err, ErrUnknownNode)
			assert.Contains(t, err.Error(), "ghost")
		})
	}
}

func TestResolveDuplicateNodeID(t *testing.T) {
	s := &Snapshot{Nodes: []*Node{{ID: "a"}, {ID: "a"}}}
	err := s.Resolve()
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestResolveFailureLeavesSnapshotUntouched(t *testing.T) {
	s := &Snapshot{
		Nodes: []*Node{{ID: "a"}},
		Links: []*Link{
			{Source: "a", Target: "a"},
			{Source: "a", Target: "ghost"},
		},
	}
	require.ErrorIs(t, s.Resolve(), ErrUnknownNode)

	// Nothing was bound, not even the valid first link.
	assert.Nil(t, s.Links[0].SourceNode())
	assert.Nil(t, s.Links[0].TargetNode())
	_, ok := s.Node("a")
	assert.False(t, ok)
}

func TestEmptySnapshotIsValid(t *testing.T) {
	s, err := Parse([]byte(`{"nodes":[],"links":[]}`))
	require.NoError(t, err)
	assert.Empty(t, s.Nodes)
	assert.Equal(t, Stats{}, s.Stats())
}

func TestDegreeAndNeighbors(t *testing.T) {
	s := Sample()

	assert.Equal(t, 2, s.Degree("main"))
	assert.Equal(t, 2, s.Degree("process_data"))
	assert.Equal(t, 1, s.Degree("generate_report"))
	assert.Equal(t, 0, s.Degree("ghost"))

	callers, callees := s.Neighbors("process_data")
	require.Len(t, callers, 1)
	require.Len(t, callees, 1)
	assert.Equal(t, "main", callers[0].ID)
	assert.Equal(t, "analyze_results", callees[0].ID)

	callers, callees = s.Neighbors("main")
	assert.Empty(t, callers)
	assert.Len(t, callees, 2)
}

func TestStatsCountsChanged(t *testing.T) {
	st := Sample().Stats()
	assert.Equal(t, Stats{Nodes: 5, Links: 4, Changed: 1}, st)
}

func TestDisplayLabelFallsBackToID(t *testing.T) {
	n := &Node{ID: "calc"}
	assert.Equal(t, "calc", n.DisplayLabel())
	n.Label = "calculate()"
	assert.Equal(t, "calculate()", n.DisplayLabel())
}

func TestPinUnpin(t *testing.T) {
	n := &Node{ID: "a", X: 3, Y: 4}
	n.Pin(10, 20)
	require.NotNil(t, n.FX)
	require.NotNil(t, n.FY)
	assert.Equal(t, 10.0, *n.FX)
	assert.Equal(t, 20.0, *n.FY)
	n.Unpin()
	assert.Nil(t, n.FX)
	assert.Nil(t, n.FY)
}

func TestLayoutFieldsStayOffTheWire(t *testing.T) {
	n := &Node{ID: "a", X: 1, Y: 2, VX: 3, VY: 4}
	n.Pin(5, 6)
	out, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a"}`, string(out))
}

func TestMarshalIndentRoundTrip(t *testing.T) {
	out, err := Sample().MarshalIndent()
	require.NoError(t, err)

	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, Sample().Stats(), back.Stats())
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Sample()
	main, _ := orig.Node("main")
	main.X, main.Y = 11, 22
	main.Pin(33, 44)

	clone := orig.Clone()

	cmain, ok := clone.Node("main")
	require.True(t, ok, "clone of a resolved snapshot should be resolved")
	assert.Equal(t, 11.0, cmain.X)
	require.NotNil(t, cmain.FX)
	assert.Equal(t, 33.0, *cmain.FX)

	cmain.X = 999
	*cmain.FX = 777
	cmain.Changed = true
	assert.Equal(t, 11.0, main.X, "mutating the clone must not touch the original")
	assert.Equal(t, 33.0, *main.FX)
	assert.False(t, main.Changed)

	assert.NotSame(t, main, cmain)
	assert.Same(t, cmain, clone.Links[0].SourceNode(), "clone links bind to clone nodes")
	assert.NotSame(t, main, clone.Links[0].SourceNode())
}

func TestCloneOfUnresolvedStaysUnresolved(t *testing.T) {
	orig := &Snapshot{
		Nodes: []*Node{{ID: "a"}},
		Links: []*Link{{Source: "a", Target: "a"}},
	}
	clone := orig.Clone()
	_, ok := clone.Node("a")
	assert.False(t, ok)
	assert.Nil(t, clone.Links[0].SourceNode())
}
