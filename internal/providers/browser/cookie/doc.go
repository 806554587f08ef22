/*
Package cookie implements the per-domain cookie jar of a browser session.

# Expiration

Every cookie carries a Unix timestamp. SetExpiry interprets its ttl as:

  - ttl < 0: delete the cookie now
  - ttl == 0: session-only, stored with the SessionOnly sentinel
  - ttl > 0: expires ttl from now

A cookie is live, meaning it is returned by Get/All and sent in the Cookie
header, when never-expire is in effect or its timestamp is strictly in the
future. The local override set with SetNeverExpire wins over Config. Session
only cookies are therefore live only under never-expire.

# Persistence

Jars can be written to and read from a JSON file:

	{
	    "sid": {"data": "abc123", "expire": 1767225600}
	}

The file is the pinned path (SetCacheFile / WithCacheFile) or
<Config.CacheDir>/<domain>.cookie. With AutoSave the whole jar is written
after every store. Persistence errors are returned or logged, never
panicked, and never change the in-memory cookies. Writers in different
processes are not coordinated.
*/
package cookie
