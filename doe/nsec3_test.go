package doe

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNSEC3EmptyFiltersUnsupportedRecords(t *testing.T) {
	unsupportedHash := newRR("a.example.com. 3600 IN NSEC3 2 0 1 AABBCCDD b.example.com A RRSIG NSEC3").(*dns.NSEC3)
	n := NewNSEC3(zoneName, []*dns.NSEC3{unsupportedHash})
	assert.True(t, n.Empty())
}

func TestNSEC3FindClosestEncloserWithoutRecords(t *testing.T) {
	n := NewNSEC3(zoneName, nil)
	_, _, ok := n.FindClosestEncloser("a.example.com.")
	require.False(t, ok)
}

func TestNSEC3TypeBitMapContainsAnyOf(t *testing.T) {
	hashed := dns.HashName("example.com.", dns.SHA1, 1, "AABBCCDD")
	rr := newRR(hashed + ".example.com. 3600 IN NSEC3 1 0 1 AABBCCDD " + hashed + " NS SOA RRSIG DNSKEY").(*dns.NSEC3)
	n := NewNSEC3(zoneName, []*dns.NSEC3{rr})

	nameSeen, typeSeen := n.TypeBitMapContainsAnyOf("example.com.", []uint16{dns.TypeSOA})
	assert.True(t, nameSeen)
	assert.True(t, typeSeen)

	nameSeen, typeSeen = n.TypeBitMapContainsAnyOf("example.com.", []uint16{dns.TypeDS})
	assert.True(t, nameSeen)
	assert.False(t, typeSeen)
}
