package internal

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestTimelineSnapshotGolden(t *testing.T) {
	e := New()
	e.Timeline.Tick()
	e.Timeline.Tick()
	e.Timeline.Tick()

	data, err := json.MarshalIndent(e.Timeline.Snapshot(), "", "  ")
	require.NoError(t, err)
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "timeline_snapshot", data)
}
