// Package ice parses the STUN/TURN server notation used in the sapi
// config file and renders it into the shape WebRTC clients expect.
package ice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Default ports per RFC 5389 / RFC 5766.
const (
	defaultSTUNPort = 3478
	defaultTURNPort = 3478
)

var (
	ErrUnknownScheme = errors.New("unknown ICE scheme")
	ErrEmptyHost     = errors.New("ICE server host is empty")
)

// Server is one NAT-traversal server from the ice.servers list.
//
// The config notation embeds TURN credentials in the URI
// (turn:user:credential@host:port); Parse splits them out so they are
// never rendered back into a client-visible URL.
type Server struct {
	Scheme     string `json:"-"`
	Host       string `json:"-"`
	Port       int    `json:"-"`
	Username   string `json:"-"`
	Credential string `json:"-"`
}

// ClientServer is the JSON shape handed to WebRTC clients, matching the
// RTCIceServer dictionary.
type ClientServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

// Parse parses a single ice.servers entry. Supported forms:
//
//	stun:host
//	stun:host:port
//	turn:host
//	turn:host:port
//	turn:user:credential@host
//	turn:user:credential@host:port
func Parse(uri string) (Server, error) {
	scheme, rest, ok := strings.Cut(uri, ":")
	if !ok {
		return Server{}, fmt.Errorf("%q: missing scheme separator", uri)
	}

	var srv Server
	switch scheme {
	case "stun", "turn":
		srv.Scheme = scheme
	default:
		return Server{}, fmt.Errorf("%q: %w %q", uri, ErrUnknownScheme, scheme)
	}

	hostport := rest
	if userinfo, hp, found := strings.Cut(rest, "@"); found {
		if srv.Scheme != "turn" {
			return Server{}, fmt.Errorf("%q: credentials are only valid for turn", uri)
		}
		user, cred, ok := strings.Cut(userinfo, ":")
		if !ok || user == "" || cred == "" {
			return Server{}, fmt.Errorf("%q: credentials must be user:credential", uri)
		}
		srv.Username = user
		srv.Credential = cred
		hostport = hp
	}

	host, port, err := splitHostPort(hostport, srv.defaultPort())
	if err != nil {
		return Server{}, fmt.Errorf("%q: %w", uri, err)
	}
	srv.Host = host
	srv.Port = port

	return srv, nil
}

// ParseAll parses every entry, failing on the first invalid one.
func ParseAll(uris []string) ([]Server, error) {
	servers := make([]Server, 0, len(uris))
	for _, uri := range uris {
		srv, err := Parse(uri)
		if err != nil {
			return nil, err
		}
		servers = append(servers, srv)
	}
	return servers, nil
}

func (s Server) defaultPort() int {
	if s.Scheme == "turn" {
		return defaultTURNPort
	}
	return defaultSTUNPort
}

// URL renders the server without credentials.
func (s Server) URL() string {
	return fmt.Sprintf("%s:%s:%d", s.Scheme, s.Host, s.Port)
}

// Client renders the server as an RTCIceServer entry. Credentials travel
// in their own fields, not in the URL.
func (s Server) Client() ClientServer {
	return ClientServer{
		URLs:       []string{s.URL()},
		Username:   s.Username,
		Credential: s.Credential,
	}
}

// ClientServers renders a parsed server list for the client API.
func ClientServers(servers []Server) []ClientServer {
	out := make([]ClientServer, 0, len(servers))
	for _, s := range servers {
		out = append(out, s.Client())
	}
	return out
}

func splitHostPort(hostport string, defaultPort int) (string, int, error) {
	host := hostport
	port := defaultPort

	if h, p, found := strings.Cut(hostport, ":"); found {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", 0, fmt.Errorf("invalid port %q", p)
		}
		host = h
		port = n
	}

	if host == "" {
		return "", 0, ErrEmptyHost
	}
	if port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("port %d out of range", port)
	}

	return host, port, nil
}
