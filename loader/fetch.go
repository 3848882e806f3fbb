package loader

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/jlaffaye/ftp"
)

// uriPattern recognizes remote origins of the form scheme://rest.
var uriPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.-]*)://`)

// IsURI tells whether an origin string is a remote URI rather than a local
// path or dotted name.
func IsURI(origin string) bool {
	return uriPattern.MatchString(origin)
}

// Fetch loads the source text behind an origin.  Local paths are read from
// the file system; http, https and ftp URIs are fetched over the network
// without authentication.  All sources are UTF-8 text.
func Fetch(origin string) (string, error) {
	if !IsURI(origin) {
		data, err := ioutil.ReadFile(origin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	scheme := strings.ToLower(uriPattern.FindStringSubmatch(origin)[1])
	switch scheme {
	case "http", "https":
		return fetchHTTP(origin)
	case "ftp":
		return fetchFTP(origin)
	}
	return "", fmt.Errorf("unsupported URI scheme %q in %s", scheme, origin)
}

func fetchHTTP(origin string) (string, error) {
	resp, err := http.Get(origin)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: %s", origin, resp.Status)
	}

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func fetchFTP(origin string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", err
	}

	addr := u.Host
	if u.Port() == "" {
		addr += ":21"
	}

	conn, err := ftp.Dial(addr)
	if err != nil {
		return "", err
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return "", err
	}

	resp, err := conn.Retr(strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		return "", err
	}
	defer resp.Close()

	data, err := ioutil.ReadAll(resp)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// HostOf returns the host part of a URI origin, without any port.
func HostOf(origin string) string {
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
