/*
Package response parses raw HTTP/1.x responses into Response values.

A raw response is a status line, CRLF separated header lines, a blank line
and the body:

	HTTP/1.1 200 OK
	Content-Type: application/json
	Set-Cookie: sid=abc123; Expires=Wed, 21 Oct 2099 07:28:00 GMT

	{"ok":true}

Parse is forgiving: header lines without a colon are skipped and an
unparsable status line leaves StatusCode at zero, so callers must check it.
Header names are lower-cased. Set-Cookie lines are handed to the supplied
CookieSetter (usually the session's *cookie.Jar) with a relative TTL and are
recorded in Response.Cookies, never in Response.Headers.

Data is filled only for application/json bodies. The remaining helpers read
the body on demand:

  - ContentType, Charset, Text: media type, charset and UTF-8 text
  - Document, Title, Links: goquery views of HTML bodies
  - XPath: htmlquery evaluation
  - PlainText: tag-free text through bluemonday
  - JSON: decode into a typed value
  - Forms, Form: HTML forms with the values a browser would submit
*/
package response
