package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNilFeedIsInert(t *testing.T) {
	var f *Feed

	f.Publish(Change{Table: "animals", Op: OpInsert, OrgID: 1, RowID: 2})

	sub, err := f.OnChange("animals", func(Change) {})
	require.NoError(t, err)
	require.Nil(t, sub)

	f.Close()
}

func TestEmbeddedRoundTrip(t *testing.T) {
	f, err := Connect(Config{Embed: true}, zap.NewNop())
	require.NoError(t, err)
	defer f.Close()

	received := make(chan Change, 1)
	sub, err := f.OnChange("animals", func(c Change) {
		received <- c
	})
	require.NoError(t, err)
	require.NotNil(t, sub)

	f.Publish(Change{Table: "animals", Op: OpInsert, OrgID: 3, RowID: 7})

	select {
	case c := <-received:
		require.Equal(t, "animals", c.Table)
		require.Equal(t, OpInsert, c.Op)
		require.EqualValues(t, 3, c.OrgID)
		require.EqualValues(t, 7, c.RowID)
		require.False(t, c.At.IsZero(), "publish stamps the change time")
	case <-time.After(5 * time.Second):
		t.Fatal("change not delivered")
	}
}

func TestSubscriptionIsPerTable(t *testing.T) {
	f, err := Connect(Config{Embed: true, SubjectPrefix: "test.changes"}, zap.NewNop())
	require.NoError(t, err)
	defer f.Close()

	animals := make(chan Change, 1)
	_, err = f.OnChange("animals", func(c Change) { animals <- c })
	require.NoError(t, err)

	f.Publish(Change{Table: "products", Op: OpDelete, OrgID: 1, RowID: 1})
	f.Publish(Change{Table: "animals", Op: OpDelete, OrgID: 1, RowID: 2})

	select {
	case c := <-animals:
		require.Equal(t, "animals", c.Table)
		require.EqualValues(t, 2, c.RowID)
	case <-time.After(5 * time.Second):
		t.Fatal("change not delivered")
	}
	require.Empty(t, animals)
}
