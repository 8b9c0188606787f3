package dnsauth

import (
	stdcrypto "crypto"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

// generateKSK builds a DNSKEY with the SEP bit set and its private key.
func generateKSK(t *testing.T, owner string) (*dns.DNSKEY, stdcrypto.Signer) {
	t.Helper()
	key := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: owner, Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 3600},
		Flags:     257,
		Protocol:  3,
		Algorithm: dns.ECDSAP256SHA256,
	}
	priv, err := key.Generate(256)
	require.NoError(t, err)
	return key, priv.(stdcrypto.Signer)
}

// signRRset signs rrset with priv as signerName, returning the RRSIG.
func signRRset(t *testing.T, signerName string, signingKey *dns.DNSKEY, priv stdcrypto.Signer, rrset []dns.RR) *dns.RRSIG {
	t.Helper()
	owner := rrset[0].Header().Name
	rrsig := &dns.RRSIG{
		Hdr:         dns.RR_Header{Name: owner, Rrtype: dns.TypeRRSIG, Class: dns.ClassINET, Ttl: 3600},
		TypeCovered: rrset[0].Header().Rrtype,
		Algorithm:   signingKey.Algorithm,
		Labels:      uint8(dns.CountLabel(owner)),
		OrigTtl:     3600,
		Expiration:  uint32(time.Now().Add(time.Hour).Unix()),
		Inception:   uint32(time.Now().Add(-time.Hour).Unix()),
		KeyTag:      signingKey.KeyTag(),
		SignerName:  signerName,
	}
	require.NoError(t, rrsig.Sign(priv, rrset))
	return rrsig
}

func aRecord(owner string) *dns.A {
	return &dns.A{Hdr: dns.RR_Header{Name: owner, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 3600}}
}
