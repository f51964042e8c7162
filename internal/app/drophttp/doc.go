// Package drophttp реализует HTTP-поверхность cactus на единственном пути "/":
//   - GET / — страница загрузки; ?🌵=N показывает, сколько файлов принято в прошлый раз.
//   - POST / — multipart с полем upload (один или несколько файлов), ответ 302 на /?🌵=N.
//   - прочие методы — 405.
//
// Ошибки разбора и сохранения не выходят наружу статусом 5xx: клиент видит только 200 или 302.
package drophttp
