package live

import (
	"encoding/json"
	"testing"

	"github.com/recera/seurat/pkg/graph"
	"github.com/recera/seurat/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMessageDecoding(t *testing.T) {
	t.Run("update graph", func(t *testing.T) {
		var msg ClientMessage
		raw := `{"type":"updateGraph","graph":{"nodes":[{"id":"a"}],"links":[]}}`
		require.NoError(t, json.Unmarshal([]byte(raw), &msg))
		assert.Equal(t, MsgUpdateGraph, msg.Type)
		assert.JSONEq(t, `{"nodes":[{"id":"a"}],"links":[]}`, string(msg.Graph))
	})

	t.Run("wheel", func(t *testing.T) {
		var msg ClientMessage
		raw := `{"type":"wheel","x":480,"y":300,"deltaY":-250}`
		require.NoError(t, json.Unmarshal([]byte(raw), &msg))
		assert.Equal(t, MsgWheel, msg.Type)
		assert.Equal(t, float64(480), msg.X)
		assert.Equal(t, float64(-250), msg.DeltaY)
	})

	t.Run("select", func(t *testing.T) {
		var msg ClientMessage
		raw := `{"type":"select","nodeId":"main"}`
		require.NoError(t, json.Unmarshal([]byte(raw), &msg))
		assert.Equal(t, MsgSelect, msg.Type)
		assert.Equal(t, "main", msg.NodeID)
	})
}

func TestEncodeSelected(t *testing.T) {
	data, err := encodeSelected("process_data")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"nodeSelected","nodeId":"process_data"}`, string(data))
}

func TestEncodeCamera(t *testing.T) {
	data, err := encodeCamera(12, -4, 1.5)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"camera","x":12,"y":-4,"k":1.5}`, string(data))
}

func TestEncodeTooltip(t *testing.T) {
	data, err := encodeTooltip(view.Tooltip{
		NodeID:  "main",
		Detail:  "Module: Unknown",
		X:       110,
		Y:       90,
		Visible: true,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "tooltip",
		"tooltip": {
			"nodeId": "main",
			"detail": "Module: Unknown",
			"x": 110,
			"y": 90,
			"visible": true
		}
	}`, string(data))
}

func TestEncodeSceneCarriesShapesAndStats(t *testing.T) {
	v := view.New(view.Config{})
	require.NoError(t, v.SetSnapshot(graph.Sample()))

	data, err := encodeScene(v)
	require.NoError(t, err)

	var msg SceneMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MsgScene, msg.Type)
	assert.Equal(t, float64(960), msg.Width)
	assert.Equal(t, float64(600), msg.Height)
	assert.Len(t, msg.Links, 4)
	assert.Len(t, msg.Nodes, 5)
	assert.Equal(t, 5, msg.Stats.Nodes)
	assert.Equal(t, 1, msg.Stats.Changed)
}
