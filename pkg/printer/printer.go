package printer

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"
)

// Kind identifies the printer transport
type Kind string

const (
	KindNone    Kind = "none"
	KindUSB     Kind = "usb"
	KindNetwork Kind = "network"
)

// Printer sends raw ESC/POS jobs to a kitchen or counter printer
type Printer interface {
	Print(ctx context.Context, job []byte) error
	Online(ctx context.Context) bool
	Kind() Kind
}

// usb device file, e.g. /dev/usb/lp0

type devicePrinter struct {
	path string
}

func (p *devicePrinter) Print(_ context.Context, job []byte) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(job); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.path, err)
	}
	return nil
}

func (p *devicePrinter) Online(_ context.Context) bool {
	_, err := os.Stat(p.path)
	return err == nil
}

func (p *devicePrinter) Kind() Kind { return KindUSB }

// raw TCP, usually port 9100

type socketPrinter struct {
	address string
	dialer  net.Dialer
}

func (p *socketPrinter) Print(ctx context.Context, job []byte) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("printer: dial %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if _, err := conn.Write(job); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *socketPrinter) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (p *socketPrinter) Kind() Kind { return KindNetwork }

type noPrinter struct{}

func (noPrinter) Print(context.Context, []byte) error { return nil }
func (noPrinter) Online(context.Context) bool          { return false }
func (noPrinter) Kind() Kind                           { return KindNone }

// Disabled returns a printer that accepts and drops every job
func Disabled() Printer {
	return noPrinter{}
}

// New builds a printer for the configured kind. target is the device path
// for usb and host:port for network.
func New(kind, target string) (Printer, error) {
	switch Kind(strings.ToLower(kind)) {
	case KindUSB:
		if target == "" {
			return nil, fmt.Errorf("printer: device path is required for usb printers")
		}
		return &devicePrinter{path: target}, nil
	case KindNetwork:
		if target == "" {
			return nil, fmt.Errorf("printer: address is required for network printers")
		}
		return &socketPrinter{address: target, dialer: net.Dialer{Timeout: 5 * time.Second}}, nil
	case KindNone, "":
		return Disabled(), nil
	}
	return nil, fmt.Errorf("printer: unknown type %q (use usb, network or none)", kind)
}
