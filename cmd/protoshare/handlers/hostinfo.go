package handlers

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"regexp"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/protoshare/protoshare/common/bootstrap"
)

var hostPortSuffix = regexp.MustCompile(`:(\d+)$`)

// HostInfoHandler reports the addresses the server is reachable on, for
// display in the frontend. Informational only.
type HostInfoHandler struct {
	components *bootstrap.Components
}

// NewHostInfoHandler creates a new host info handler
func NewHostInfoHandler(components *bootstrap.Components) *HostInfoHandler {
	return &HostInfoHandler{components: components}
}

type lanURL struct {
	Interface string `json:"interface"`
	Address   string `json:"address"`
	URL       string `json:"url"`
}

// HostInfo returns hostname, port and LAN URLs
// GET /api/host-info
func (h *HostInfoHandler) HostInfo(c echo.Context) error {
	port := h.components.Config.Service.Port
	if m := hostPortSuffix.FindStringSubmatch(c.Request().Host); m != nil {
		if p, err := strconv.Atoi(m[1]); err == nil {
			port = p
		}
	}

	protocol := c.Scheme()
	hostname, _ := os.Hostname()

	addresses, err := lanAddresses()
	if err != nil {
		h.components.Logger.Error("failed to enumerate interfaces", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "unable to determine host info")
	}

	lanURLs := make([]lanURL, 0, len(addresses))
	for _, addr := range addresses {
		lanURLs = append(lanURLs, lanURL{
			Interface: addr.name,
			Address:   addr.ip,
			URL:       fmt.Sprintf("%s://%s:%d/", protocol, addr.ip, port),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"hostname":     hostname,
		"port":         port,
		"protocol":     protocol,
		"localhostUrl": fmt.Sprintf("%s://localhost:%d/", protocol, port),
		"lanUrls":      lanURLs,
		"hasLan":       len(lanURLs) > 0,
	})
}

type ifaceAddr struct {
	name string
	ip   string
}

// lanAddresses returns the non-loopback IPv4 addresses of all up interfaces
func lanAddresses() ([]ifaceAddr, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var result []ifaceAddr
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP.To4()
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if seen[ip.String()] {
				continue
			}
			seen[ip.String()] = true
			result = append(result, ifaceAddr{name: iface.Name, ip: ip.String()})
		}
	}
	return result, nil
}
