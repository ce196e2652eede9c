package session

import (
	"context"
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// Listen starts accepting a guest on addr as host. It returns once the
// socket is bound; Poll reports the guest connecting and joining. Only the
// first connection is kept, later ones are closed straight away.
func (s *Session) Listen(ctx context.Context, addr string) error {
	ctx, err := s.open(ctx, RoleHost)
	if err != nil {
		return err
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		s.Close()
		return &TransportError{Op: "listen", Err: err}
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.log.WithField("addr", ln.Addr().String()).Info("waiting for guest")

	s.wg.Add(1)
	go s.acceptLoop(ln)
	return nil
}

// Addr returns the address the host listens on, or nil.
func (s *Session) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Session) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	first := true
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.fail(&TransportError{Op: "accept", Err: err})
			return
		}

		if !first {
			s.log.WithField("peer", conn.RemoteAddr().String()).Warn("match full, rejecting connection")
			conn.Close()
			continue
		}
		first = false
		s.pending <- conn
	}
}

// LocalAddresses returns the IPv4 addresses a guest on the local network
// can join with.
func LocalAddresses(port int) []string {
	var addresses []string

	interfaces, err := net.Interfaces()
	if err != nil {
		return addresses
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			if ip != nil && ip.To4() != nil {
				addresses = append(addresses, fmt.Sprintf("%s:%d", ip.String(), port))
			}
		}
	}

	return addresses
}
