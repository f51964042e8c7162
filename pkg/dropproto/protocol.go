// Package dropproto описывает протокол взаимодействия клиента и сервера cactus:
// HTTP-поверхность загрузки и параметры mDNS-объявления.
package dropproto

import (
	"net/url"
	"strconv"
)

// Параметры HTTP-протокола загрузки.
const (
	UploadPath     = "/"
	UploadField    = "upload"
	UploadedKey    = "🌵"
	DefaultPort    = 8989
	DefaultWebPort = 80
)

// Параметры mDNS/DNS-SD объявления.
const (
	Identifier      = "cactus"
	ServiceKind     = "http"
	ServiceProtocol = "tcp"
	ServiceDomain   = "local."
	TextNameKey     = "name"
)

// UploadedLocation возвращает адрес редиректа после загрузки: /?%F0%9F%8C%B5=<n>.
func UploadedLocation(n int) string {
	return UploadPath + "?" + url.QueryEscape(UploadedKey) + "=" + strconv.Itoa(n)
}

// ParseUploaded достаёт счётчик загруженных файлов из query; ok=false, если его нет или он не число.
func ParseUploaded(q url.Values) (n int, ok bool) {
	v := q.Get(UploadedKey)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
