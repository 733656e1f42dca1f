package testutils

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

// MockTrafficLine builds a well-formed AITFC line with the given aircraft id
// and timestamp (15 fields, id in decimal at field 1, timestamp at field 14).
func MockTrafficLine(id uint64, ts float64) string {
	return fmt.Sprintf("AITFC,%d,50.0643,8.5912,1975,128,1,316,106,DLH9U,A20N,D-AIZD,FRA,JFK,%s",
		id, strconv.FormatFloat(ts, 'f', -1, 64))
}

// MockOwnshipLine builds an XGPS broadcast line. With full set, the 6-field
// form (altitude, track, speed) is produced, otherwise the lat/lon-only form.
func MockOwnshipLine(lat, lon float64, full bool) string {
	if full {
		return fmt.Sprintf("XGPSMy Sim,%g,%g,1200.1,359.05,55.6", lat, lon)
	}
	return fmt.Sprintf("XGPSMy Sim,%g,%g", lat, lon)
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
			if condition() {
				return nil
			}
		}
	}
}

// UDPCapture collects datagrams arriving on a loopback port, for asserting
// what a component sent.
type UDPCapture struct {
	conn net.PacketConn
	mu   sync.Mutex
	got  []string
	wg   sync.WaitGroup
}

// NewUDPCapture starts listening on an ephemeral loopback port.
func NewUDPCapture() (*UDPCapture, error) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	c := &UDPCapture{conn: conn}
	c.wg.Add(1)
	go c.readLoop()
	return c, nil
}

func (c *UDPCapture) readLoop() {
	defer c.wg.Done()
	buf := make([]byte, 4096)
	for {
		n, _, err := c.conn.ReadFrom(buf)
		if err != nil {
			return
		}
		c.mu.Lock()
		c.got = append(c.got, string(buf[:n]))
		c.mu.Unlock()
	}
}

// Port returns the port the capture is listening on.
func (c *UDPCapture) Port() int {
	return c.conn.LocalAddr().(*net.UDPAddr).Port
}

// Received returns a copy of the datagrams captured so far.
func (c *UDPCapture) Received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.got))
	copy(out, c.got)
	return out
}

// Close stops the capture.
func (c *UDPCapture) Close() {
	c.conn.Close()
	c.wg.Wait()
}
