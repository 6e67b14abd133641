package servers

import (
	"github.com/1f349/acme-redirect/http-acme"
	"github.com/1f349/acme-redirect/logger"
	"github.com/go-acme/lego/v4/challenge/http01"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/net/http/httpguts"
	"io/fs"
	"net/http"
	"strings"
	"unicode/utf8"
)

// route is a single entry in the dispatch table
type route struct {
	method string
	path   string
	handle httprouter.Handle
}

// NewChallengeServer creates the handler answering HTTP-01 challenges from the
// proof files in challs and redirecting every other request to https
func NewChallengeServer(challs fs.FS) http.Handler {
	c := &challengeServer{challs: challs}

	routes := []route{
		{http.MethodGet, http01.PathPrefix + ":token", c.acme},
		{http.MethodGet, http01.PathPrefix, c.acme},
	}

	r := httprouter.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.HandleMethodNotAllowed = false
	r.HandleOPTIONS = false
	for _, i := range routes {
		r.Handle(i.method, i.path, i.handle)
	}

	// anything not in the table is redirected
	r.NotFound = http.HandlerFunc(redirect)
	return r
}

type challengeServer struct {
	challs fs.FS
}

// acme serves the proof for the token in the request path, invalid tokens are
// rejected before the filesystem is accessed
func (c *challengeServer) acme(rw http.ResponseWriter, req *http.Request, params httprouter.Params) {
	token := params.ByName("token")
	logger.Logger.Info("Acme challenge", "token", token)

	if !http_acme.ValidToken(token) {
		badRequest(rw)
		return
	}

	proof, err := fs.ReadFile(c.challs, token)
	if err != nil {
		logger.Logger.Debug("Failed to read challenge proof", "token", token, "err", err)
		notFound(rw)
		return
	}

	rw.Header().Set("Content-Type", "application/octet-stream")
	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write(proof)
}

// redirect sends a permanent redirect to the https version of the request url,
// only GET and HEAD requests are redirected
func redirect(rw http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		notFound(rw)
		return
	}

	host := req.Host
	if host == "" || !utf8.ValidString(host) || !httpguts.ValidHostHeader(host) {
		badRequest(rw)
		return
	}

	// check after joining so the host and the path are both covered
	target := "https://" + host + req.URL.RequestURI()
	if strings.ContainsAny(target, "\r\n") {
		badRequest(rw)
		return
	}

	rw.Header().Set("Location", target)
	writeHtml(rw, http.StatusMovedPermanently, RedirectBody)
}
