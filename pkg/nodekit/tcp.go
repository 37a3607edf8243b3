package nodekit

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// DialTCP opens a connection from a credential holding host/port (and ssl).
// The connect is bounded by ConnectTimeout and the connection carries a
// QueryTimeout deadline for the exchange that follows.
func DialTCP(ctx context.Context, creds Credentials, defaultPort int) (net.Conn, error) {
	host := creds.String("localhost", "host")
	addr := net.JoinHostPort(host, strconv.Itoa(creds.Int(defaultPort, "port")))

	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	var conn net.Conn
	var err error
	if creds.Bool(false, "ssl", "tls") {
		d := &tls.Dialer{
			NetDialer: &net.Dialer{Timeout: ConnectTimeout},
			Config:    &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12},
		}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		d := &net.Dialer{Timeout: ConnectTimeout}
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	if err := conn.SetDeadline(time.Now().Add(QueryTimeout)); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Exchange writes payload and reads until the peer closes, maxBytes is
// reached or the deadline expires.
func Exchange(conn net.Conn, payload []byte, maxBytes int64) ([]byte, error) {
	if len(payload) > 0 {
		if _, err := conn.Write(payload); err != nil {
			return nil, fmt.Errorf("write failed: %w", err)
		}
	}
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	data, err := io.ReadAll(io.LimitReader(conn, maxBytes))
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() && len(data) > 0 {
			return data, nil
		}
		return nil, fmt.Errorf("read failed: %w", err)
	}
	return data, nil
}
