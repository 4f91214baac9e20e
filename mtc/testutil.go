package mtc

import "testing"

// testIssuerID is the issuer used across the package's tests.
var testIssuerID = IssuerID("test.issuer")

// testAssertion builds a deterministic single-host assertion.
func testAssertion(t *testing.T, host string) Assertion {
	t.Helper()
	a, err := NewAssertion(nil, AssertionClaims{DNSNames: []string{host}})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// testAssertions builds one assertion per host.
func testAssertions(t *testing.T, hosts ...string) []Assertion {
	t.Helper()
	assertions := make([]Assertion, len(hosts))
	for i, host := range hosts {
		assertions[i] = testAssertion(t, host)
	}
	return assertions
}
