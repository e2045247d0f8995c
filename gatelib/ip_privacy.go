package gatelib

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
)

// hashIP хэширует IP-адрес для записи в логи. Сырые адреса коллекторов
// в логи не попадают: 12 hex символов достаточно для корреляции.
func hashIP(ip net.IP) string {
	h := sha256.Sum256(ip)

	return hex.EncodeToString(h[:6]) // 12 hex chars = 48 бит
}
