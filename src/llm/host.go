package llm

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"ai_detective/src/logger"
)

const defaultOllamaPort = "11434"

// NormalizeHost turns an OLLAMA_HOST style value into a base URL. It accepts
// the same forms the ollama server does: "host:port", a bare IP or host, and
// full URLs. A missing scheme means http, a missing port means 11434 (or the
// scheme's port when a scheme is given).
func NormalizeHost(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultOllamaHost
	}

	defaultPort := defaultOllamaPort
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		logger.Warn().Str("port", port).Str("default", defaultPort).Msg("Invalid Ollama port, using default")
		port = defaultPort
	}

	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
	return u.String()
}
