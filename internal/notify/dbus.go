package notify

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// D-Bus names for the refresh entry point.
const (
	DefaultBusName = "org.cellignore.Remapper"
	ObjectPath     = dbus.ObjectPath("/org/cellignore/Remapper")
	Interface      = "org.cellignore.Remapper"
)

// ErrNameTaken is returned when another process owns the bus name.
var ErrNameTaken = errors.New("notify: bus name already taken")

// Refresher is the object exported on the bus.
type Refresher struct {
	sched *Scheduler
	log   *slog.Logger
}

// Refresh schedules a refresh of the ignored cells. Callers are preference
// editors that have just saved a change.
func (r *Refresher) Refresh() *dbus.Error {
	r.log.Debug("refresh requested over D-Bus")
	r.sched.Request()
	return nil
}

// DBusService exports a Refresher on the session bus.
type DBusService struct {
	conn *dbus.Conn
	name string
}

// StartDBus connects to the session bus, exports the refresh object and
// claims name.
func StartDBus(name string, sched *Scheduler, logger *slog.Logger) (*DBusService, error) {
	if name == "" {
		name = DefaultBusName
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	r := &Refresher{sched: sched, log: logger}
	if err := conn.Export(r, ObjectPath, Interface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to export refresher: %w", err)
	}

	reply, err := conn.RequestName(name, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("%w: %s", ErrNameTaken, name)
	}

	logger.Info("refresh service exported", "bus_name", name, "path", ObjectPath)
	return &DBusService{conn: conn, name: name}, nil
}

// Name returns the claimed bus name.
func (s *DBusService) Name() string {
	return s.name
}

// Close releases the name and the connection.
func (s *DBusService) Close() error {
	if s.conn == nil {
		return nil
	}
	s.conn.ReleaseName(s.name)
	return s.conn.Close()
}

// SendRefresh calls Refresh on the service owning name. Editors use this
// after saving profiles.
func SendRefresh(name string) error {
	if name == "" {
		name = DefaultBusName
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	call := conn.Object(name, ObjectPath).Call(Interface+".Refresh", 0)
	if call.Err != nil {
		return fmt.Errorf("refresh call: %w", call.Err)
	}
	return nil
}
