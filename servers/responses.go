package servers

import (
	"io"
	"net/http"
)

const (
	BadRequestBody = `<html>
<head><title>400 Bad Request</title></head>
<body>
<center><h1>400 Bad Request</h1></center>
<hr><center>acme-redirect</center>
</body>
</html>
`
	NotFoundBody = `<html>
<head><title>404 Not Found</title></head>
<body>
<center><h1>404 Not Found</h1></center>
<hr><center>acme-redirect</center>
</body>
</html>
`
	RedirectBody = `<html>
<head><title>301 Moved Permanently</title></head>
<body>
<center><h1>301 Moved Permanently</h1></center>
<hr><center>acme-redirect</center>
</body>
</html>
`
)

// writeHtml outputs one of the fixed html responses
func writeHtml(rw http.ResponseWriter, code int, body string) {
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	rw.WriteHeader(code)
	_, _ = io.WriteString(rw, body)
}

func badRequest(rw http.ResponseWriter) { writeHtml(rw, http.StatusBadRequest, BadRequestBody) }
func notFound(rw http.ResponseWriter)   { writeHtml(rw, http.StatusNotFound, NotFoundBody) }
