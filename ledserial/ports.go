package ledserial

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes a serial port present on the host
type PortInfo struct {
	Name         string `json:"name"`
	IsUSB        bool   `json:"usb"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty"`
}

// replaced in tests
var detailedPortsList = enumerator.GetDetailedPortsList

// ListPorts enumerates all serial ports
func ListPorts() ([]PortInfo, error) {
	ports, err := detailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate ports: %w", err)
	}

	infos := make([]PortInfo, 0, len(ports))
	for _, port := range ports {
		infos = append(infos, PortInfo{
			Name:         port.Name,
			IsUSB:        port.IsUSB,
			VID:          port.VID,
			PID:          port.PID,
			SerialNumber: port.SerialNumber,
		})
	}
	return infos, nil
}

// FindPort returns the first USB port matching vid and pid.
// An empty pid matches any product from the vendor.
func FindPort(vid, pid string) (PortInfo, error) {
	ports, err := ListPorts()
	if err != nil {
		return PortInfo{}, err
	}

	for _, port := range ports {
		if matchUSB(port, vid, pid) {
			return port, nil
		}
	}

	return PortInfo{}, &SendError{
		Kind:   ErrDeviceUnavailable,
		Reason: fmt.Sprintf("no USB port with VID %s PID %s: %s", vid, pidOrAny(pid), ReasonNotFound),
	}
}

// matchUSB reports whether port is a USB port with the given ids
func matchUSB(port PortInfo, vid, pid string) bool {
	if !port.IsUSB {
		return false
	}
	if !strings.EqualFold(port.VID, vid) {
		return false
	}
	return pid == "" || strings.EqualFold(port.PID, pid)
}

func pidOrAny(pid string) string {
	if pid == "" {
		return "*"
	}
	return pid
}
