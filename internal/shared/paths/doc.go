// Package paths resolves where cookie jars live on disk.
//
// A jar without an explicit file is stored under the configured cache
// directory as <sanitized-domain>.cookie:
//
//	~/.cache/websession/cookies/
//	  ├── example.com.cookie
//	  └── api.example.com_8443.cookie
//
// # Usage
//
//	dir, _ := paths.DefaultCacheDir()
//	file := paths.CookieFile(dir, "example.com:8443")
package paths
