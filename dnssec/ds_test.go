package dnssec

import (
	"testing"

	"github.com/dnschain/dnsauth/crypto"
	"github.com/dnschain/dnsauth/status"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func TestBindDSValid(t *testing.T) {
	key := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: owner, Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 3600},
		Flags:     257,
		Protocol:  3,
		Algorithm: dns.ECDSAP256SHA256,
	}
	_, err := key.Generate(256)
	require.NoError(t, err)
	ds := key.ToDS(dns.SHA256)
	require.NotNil(t, ds)

	bindings := BindDS(ds, []*dns.DNSKEY{key}, crypto.DefaultCapability())
	require.Len(t, bindings, 1)
	require.Equal(t, status.DSValid, bindings[0].Status)
}

func TestBindDSNoCandidateDNSKEY(t *testing.T) {
	ds := &dns.DS{Hdr: dns.RR_Header{Name: owner, Rrtype: dns.TypeDS}, Algorithm: dns.ECDSAP256SHA256, DigestType: dns.SHA256, KeyTag: 1}

	bindings := BindDS(ds, nil, crypto.DefaultCapability())
	require.Len(t, bindings, 1)
	require.Equal(t, status.DSIndeterminateNoDNSKEY, bindings[0].Status)
	require.ErrorIs(t, bindings[0].Err, ErrNoCandidateForDS)
}

func TestBindDSInvalidDigest(t *testing.T) {
	key := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: owner, Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 3600},
		Flags:     257,
		Protocol:  3,
		Algorithm: dns.ECDSAP256SHA256,
	}
	_, err := key.Generate(256)
	require.NoError(t, err)
	ds := key.ToDS(dns.SHA256)
	require.NotNil(t, ds)
	ds.Digest = "0000"

	bindings := BindDS(ds, []*dns.DNSKEY{key}, crypto.DefaultCapability())
	require.Len(t, bindings, 1)
	require.Equal(t, status.DSInvalidDigest, bindings[0].Status)
}

func TestBindDSUnsupportedDigestIsAlgorithmIgnored(t *testing.T) {
	key := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: owner, Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 3600},
		Flags:     257,
		Protocol:  3,
		Algorithm: dns.ECDSAP256SHA256,
	}
	_, err := key.Generate(256)
	require.NoError(t, err)
	ds := &dns.DS{Hdr: dns.RR_Header{Name: owner, Rrtype: dns.TypeDS}, Algorithm: key.Algorithm, DigestType: 99, KeyTag: key.KeyTag()}

	bindings := BindDS(ds, []*dns.DNSKEY{key}, crypto.DefaultCapability())
	require.Len(t, bindings, 1)
	require.Equal(t, status.DSAlgorithmIgnored, bindings[0].Status)
}
