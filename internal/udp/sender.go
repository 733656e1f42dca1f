// Package udp delivers replayed records as connectionless datagrams, one
// destination for traffic data and one for weather data.
package udp

import (
	"fmt"
	"net"
)

// Sender holds the two outbound datagram connections.
type Sender struct {
	traffic *net.UDPConn
	weather *net.UDPConn
}

// New resolves the destination host and opens one connection per port.
func New(host string, trafficPort, weatherPort int) (*Sender, error) {
	traffic, err := dial(host, trafficPort)
	if err != nil {
		return nil, fmt.Errorf("failed to open traffic socket: %w", err)
	}
	weather, err := dial(host, weatherPort)
	if err != nil {
		traffic.Close()
		return nil, fmt.Errorf("failed to open weather socket: %w", err)
	}
	return &Sender{traffic: traffic, weather: weather}, nil
}

func dial(host string, port int) (*net.UDPConn, error) {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s:%d: %w", host, port, err)
	}
	return net.DialUDP("udp", nil, addr)
}

// SendTraffic sends one traffic record as a single datagram.
func (s *Sender) SendTraffic(line string) error {
	if _, err := s.traffic.Write([]byte(line)); err != nil {
		return fmt.Errorf("traffic send failed: %w", err)
	}
	return nil
}

// SendWeather sends one weather line verbatim as a single datagram.
func (s *Sender) SendWeather(line string) error {
	if _, err := s.weather.Write([]byte(line)); err != nil {
		return fmt.Errorf("weather send failed: %w", err)
	}
	return nil
}

// Close releases both sockets.
func (s *Sender) Close() error {
	errT := s.traffic.Close()
	errW := s.weather.Close()
	if errT != nil {
		return errT
	}
	return errW
}
