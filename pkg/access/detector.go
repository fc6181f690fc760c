package access

import (
	"net"
	"net/http"
	"strings"

	"github.com/moneyflow/moneyflow/pkg/useragent"
)

// Method is the binary classification of the runtime context.
type Method string

const (
	// MethodBrowser marks ordinary browser access.
	MethodBrowser Method = "browser"
	// MethodLine marks access from the LINE in-app browser or a LIFF deployment.
	MethodLine Method = "line"
)

// Config holds the detector's environment-resolved settings.
type Config struct {
	// LiffID is the LINE mini-app identifier. Its absence only disables
	// LINE-specific paths; everything else keeps working.
	LiffID string `env:"LIFF_ID"`
	// MockEnabled substitutes the mock identity provider for the real LINE
	// SDK. An explicit operator decision, independent of detection.
	MockEnabled bool `env:"LIFF_MOCK_ENABLED" envDefault:"false"`
}

// Environment is a snapshot of the ambient request context detection runs
// against. The zero value describes a context with no runtime at all (for
// example a background job), which always classifies as browser access.
type Environment struct {
	UserAgent  string
	Hostname   string
	HasRuntime bool
}

// EnvironmentFromRequest captures the detection inputs from an HTTP request.
func EnvironmentFromRequest(r *http.Request) Environment {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return Environment{
		UserAgent:  r.UserAgent(),
		Hostname:   host,
		HasRuntime: true,
	}
}

// Detector classifies access methods. Construct one at the composition root
// and share it; all methods are side-effect-free and safe for concurrent use.
type Detector struct {
	cfg Config
}

func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// DetectMethod classifies the environment. Policy, in order: no runtime means
// browser; the LINE in-app UA marker means line; a configured LIFF ID combined
// with a LIFF-looking host (contains "liff" or "localhost") means line;
// anything else is browser.
func (d *Detector) DetectMethod(env Environment) Method {
	if !env.HasRuntime {
		return MethodBrowser
	}

	if strings.Contains(env.UserAgent, useragent.LineAppMarker) {
		return MethodLine
	}

	if d.cfg.LiffID != "" && isLiffHost(env.Hostname) {
		return MethodLine
	}

	return MethodBrowser
}

// IsLiffEnvironment reports whether the environment classifies as LINE access.
func (d *Detector) IsLiffEnvironment(env Environment) bool {
	return d.DetectMethod(env) == MethodLine
}

// IsMobileDevice reports whether the user agent belongs to a mobile device.
// Returns false when no runtime environment is available.
func (d *Detector) IsMobileDevice(env Environment) bool {
	if !env.HasRuntime {
		return false
	}
	return useragent.Parse(env.UserAgent).IsMobile()
}

// ShouldUseLiffMock reports the mock flag verbatim. It never consults the
// detected access method.
func (d *Detector) ShouldUseLiffMock() bool {
	return d.cfg.MockEnabled
}

func isLiffHost(hostname string) bool {
	return strings.Contains(hostname, "liff") || strings.Contains(hostname, "localhost")
}
