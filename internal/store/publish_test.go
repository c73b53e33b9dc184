package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublish_SkipsStaleSnapshots(t *testing.T) {
	s := New(nil)

	var got []uint64
	s.OnChange(func(snap Snapshot) { got = append(got, snap.Version) })

	s.publish(Snapshot{Version: 2})
	s.publish(Snapshot{Version: 1})
	s.publish(Snapshot{Version: 2})
	s.publish(Snapshot{Version: 3})

	assert.Equal(t, []uint64{2, 3}, got)
}

func TestUniqueBy_KeepsFirst(t *testing.T) {
	type row struct{ id, name string }
	rows := []row{{"a", "first"}, {"b", "other"}, {"a", "second"}}

	out := uniqueBy(rows, func(r row) string { return r.id })

	assert.Equal(t, []row{{"a", "first"}, {"b", "other"}}, out)
}
