package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketMergesTriggersForSameCodeAndFields(t *testing.T) {
	var b Bucket

	b.Insert(MissingRRSIGForAlgDS, ServerClientResponse{Server: "ns1", Client: "c1", Response: 1}, map[string]string{"algorithm": "8"})
	b.Insert(MissingRRSIGForAlgDS, ServerClientResponse{Server: "ns2", Client: "c1", Response: 2}, map[string]string{"algorithm": "8"})

	require.Equal(t, 1, b.Len())
	assert.Len(t, b.List()[0].Triggers, 2)
}

func TestBucketKeepsDistinctEntriesForDifferentFields(t *testing.T) {
	var b Bucket

	b.Insert(MissingSEPForAlg, ServerClientResponse{Server: "ns1"}, map[string]string{"algorithm": "8"})
	b.Insert(MissingSEPForAlg, ServerClientResponse{Server: "ns1"}, map[string]string{"algorithm": "13"})

	assert.Equal(t, 2, b.Len())
}

func TestBucketDoesNotDuplicateIdenticalTrigger(t *testing.T) {
	var b Bucket
	trig := ServerClientResponse{Server: "ns1", Client: "c1", Response: 1}

	b.Insert(NoSEP, trig, nil)
	b.Insert(NoSEP, trig, nil)

	assert.Len(t, b.List()[0].Triggers, 1)
}

func TestSortTriggersIsStableAndIdempotent(t *testing.T) {
	var b Bucket
	b.Insert(ServerUnresponsiveUDP, ServerClientResponse{Server: "z", Client: "c"}, nil)
	b.Insert(ServerUnresponsiveUDP, ServerClientResponse{Server: "a", Client: "c"}, nil)

	b.SortTriggers()
	first := b.List()[0].Triggers[0].Server

	b.SortTriggers()
	assert.Equal(t, first, b.List()[0].Triggers[0].Server)
	assert.Equal(t, "a", first)
}
