package application

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mtc-sys/mtc-go/mtc"
)

// AssertionInput is one entry of the JSON batch input document.
type AssertionInput struct {
	SubjectType string   `json:"subject_type"`
	SubjectInfo string   `json:"subject_info"` // base64
	DNSNames    []string `json:"dns"`
	DNSWildcard []string `json:"dns_wildcard"`
	IPv4Addrs   []string `json:"ipv4"`
	IPv6Addrs   []string `json:"ipv6"`
}

// ReadAssertionsInput reads a JSON assertion list and translates it
// into core assertions, preserving document order.
func ReadAssertionsInput(path string) ([]mtc.Assertion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseAssertionsInput(data)
}

// ParseAssertionsInput translates a JSON assertion list document into
// core assertions.
func ParseAssertionsInput(data []byte) ([]mtc.Assertion, error) {
	var inputs []AssertionInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("Assertion input must be a JSON list: %v", err)
	}

	assertions := make([]mtc.Assertion, 0, len(inputs))
	for i, in := range inputs {
		if in.SubjectType != "tls" {
			return nil, fmt.Errorf("Item %d: only tls is a supported subject type", i)
		}
		subjectInfo, err := base64.StdEncoding.DecodeString(in.SubjectInfo)
		if err != nil {
			return nil, fmt.Errorf("Item %d: cannot decode subject_info: %v", i, err)
		}
		a, err := mtc.NewAssertion(subjectInfo, mtc.AssertionClaims{
			DNSNames:      in.DNSNames,
			DNSWildcards:  in.DNSWildcard,
			IPv4Addresses: in.IPv4Addrs,
			IPv6Addresses: in.IPv6Addrs,
		})
		if err != nil {
			return nil, fmt.Errorf("Item %d: %v", i, err)
		}
		assertions = append(assertions, a)
	}
	return assertions, nil
}
