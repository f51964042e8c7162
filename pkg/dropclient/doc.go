// Package dropclient загружает локальные файлы на сервер cactus тем же запросом, что и форма браузера.
package dropclient
