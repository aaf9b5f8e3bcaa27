// Package probe checks local ports for a live web server. Probing never
// leaves the loopback interface.
package probe

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

// WebProbe implements domain.ServerProbe against localhost.
type WebProbe struct {
	Host        string
	DialTimeout time.Duration
	HTTPTimeout time.Duration
}

func New() *WebProbe {
	return &WebProbe{
		Host:        "127.0.0.1",
		DialTimeout: time.Second,
		HTTPTimeout: 2 * time.Second,
	}
}

// Probe dials each port in order; the first open port is HTTP-probed and
// decides the result.
func (p *WebProbe) Probe(ports []int) domain.ProbeResult {
	for _, port := range ports {
		addr := net.JoinHostPort(p.Host, strconv.Itoa(port))

		conn, err := net.DialTimeout("tcp", addr, p.DialTimeout)
		if err != nil {
			continue
		}
		conn.Close()

		client := &http.Client{Timeout: p.HTTPTimeout}
		resp, err := client.Get(fmt.Sprintf("http://%s/", addr))
		if err != nil {
			return domain.ProbeResult{Port: port, Error: "connection refused"}
		}
		resp.Body.Close()
		return domain.ProbeResult{Alive: true, Port: port, StatusCode: resp.StatusCode}
	}
	return domain.ProbeResult{Error: "no server detected"}
}
