// Package facilityapi is the test suite's view of the facility API: a typed HTTP client, and
// helpers that perform one request each and validate the result with testify assertions.
//
// Helpers take a require.TestingT, so they can be used with a harness test context or a
// *testing.T alike. A contract violation fails the calling test; the cleanup helpers are the
// exception and only log.
package facilityapi
