package browser

import (
	"net/url"
	"path"
	"strings"
)

// Resolve turns a link into an absolute URL against the bound host and
// scheme. The first matching rule wins:
//
//	http://x/a, https://x/a  unchanged
//	://x/a                   scheme + link
//	//x/a                    scheme + ":" + link
//	/a                       scheme://host + link
//	a                        scheme://host + dir(lastPage) + "/" + link
//
// Surrounding whitespace is trimmed. Nothing is escaped or normalized.
func Resolve(rawURL, host, scheme, lastPage string) string {
	link := strings.TrimSpace(rawURL)
	if scheme == "" {
		scheme = "http"
	}

	switch {
	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return link
	case strings.HasPrefix(link, "://"):
		return scheme + link
	case strings.HasPrefix(link, "//"):
		return scheme + ":" + link
	case strings.HasPrefix(link, "/"):
		return scheme + "://" + host + link
	}

	return scheme + "://" + host + pageDir(lastPage) + "/" + link
}

// pageDir returns the directory of the page's path with no trailing slash.
// Empty, root and unparsable pages have no directory.
func pageDir(page string) string {
	if page == "" {
		return ""
	}

	u, err := url.Parse(page)
	if err != nil {
		return ""
	}

	dir := path.Dir(u.Path)
	if dir == "/" || dir == "." {
		return ""
	}
	return dir
}
