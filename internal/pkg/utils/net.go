package utils

import "net"

// GetOutboundIP returns the preferred outbound IP of this host. It dials a
// UDP "connection" that never sends a packet, just to learn the local addr.
func GetOutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}
