// Package ownship tracks the user aircraft's position from a ForeFlight
// style GPS broadcast, best-effort and without ever blocking the replay.
package ownship

import (
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/twinfan/sendtraffic/internal/parser"
	"github.com/twinfan/sendtraffic/internal/types"
)

// Tracker listens on a dedicated UDP port and keeps the latest ownship
// position. It is the single writer of that position; consumers read a copy
// through Position. Poll is interleaved into the replay loop, so there is no
// concurrent access and no locking.
type Tracker struct {
	conn     net.PacketConn
	pos      types.OwnshipPosition
	printPos bool
	buf      []byte
}

// Listen opens the GPS broadcast port. With printPos set, every accepted
// update is logged.
func Listen(port int, printPos bool) (*Tracker, error) {
	conn, err := net.ListenPacket("udp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on GPS port %d: %w", port, err)
	}
	return &Tracker{
		conn:     conn,
		pos:      types.NewOwnshipPosition(),
		printPos: printPos,
		buf:      make([]byte, 4096),
	}, nil
}

// Poll drains all currently queued datagrams without waiting. The deadline
// must sit slightly in the future: a deadline at or before now fails the
// read outright instead of attempting the recv. The first timeout (or any
// other socket error) ends the drain. Later datagrams in the same drain win.
func (t *Tracker) Poll() {
	for {
		if err := t.conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
			return
		}
		n, _, err := t.conn.ReadFrom(t.buf)
		if err != nil {
			return
		}
		line := strings.TrimSpace(string(t.buf[:n]))
		if parser.UpdateOwnship(&t.pos, line) && t.printPos {
			log.Println(t.pos)
		}
	}
}

// LocalAddr returns the address the tracker listens on.
func (t *Tracker) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// Position returns a copy of the latest known position.
func (t *Tracker) Position() types.OwnshipPosition {
	return t.pos
}

// Close releases the listening socket.
func (t *Tracker) Close() error {
	return t.conn.Close()
}
