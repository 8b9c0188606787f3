package doe

import (
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

// wildcardName replaces the first label of name with "*".
func wildcardName(name string) string {
	labelIndexes := dns.Split(name)
	if len(labelIndexes) < 2 {
		return "*."
	}
	return "*." + name[labelIndexes[1]:]
}

// canonicalCmp orders a, b per RFC 4034 §6.1 canonical DNS name ordering.
func canonicalCmp(a, b string) int {
	labelsA := dns.SplitDomainName(dns.CanonicalName(a))
	labelsB := dns.SplitDomainName(dns.CanonicalName(b))

	minLength := len(labelsA)
	if len(labelsB) < minLength {
		minLength = len(labelsB)
	}

	for i := 1; i <= minLength; i++ {
		labelA := labelsA[len(labelsA)-i]
		labelB := labelsB[len(labelsB)-i]

		if strings.Contains(labelA, `\`) {
			labelA = decodeEscaped(labelA)
		}
		if strings.Contains(labelB, `\`) {
			labelB = decodeEscaped(labelB)
		}

		if labelA != labelB {
			if labelA < labelB {
				return -1
			}
			return 1
		}
	}

	if len(labelsA) < len(labelsB) {
		return -1
	} else if len(labelsA) > len(labelsB) {
		return 1
	}
	return 0
}

// decodeEscaped converts escaped octets (e.g. \001) to their byte values
// so that canonical comparison operates on the raw wire bytes.
func decodeEscaped(label string) string {
	var decoded strings.Builder
	for i := 0; i < len(label); i++ {
		if label[i] == '\\' && i+3 < len(label) && isDigit(label[i+1]) && isDigit(label[i+2]) && isDigit(label[i+3]) {
			if octet, err := strconv.Atoi(label[i+1 : i+4]); err == nil {
				decoded.WriteRune(rune(octet))
			}
			i += 3
		} else {
			decoded.WriteByte(label[i])
		}
	}
	return decoded.String()
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
