// Package access classifies how a request reached the application: through an
// ordinary browser or through the LINE in-app browser (LIFF).
//
// Detection is a pure function of the captured Environment and the resolved
// configuration, so it can be re-evaluated at any point without caching
// concerns. The mock flag is deliberately orthogonal to detection: an operator
// can force the mock identity provider on while exercising genuine LINE
// navigation, or off while testing the mock-free paths from localhost.
package access
