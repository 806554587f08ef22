package main

import "github.com/urfave/cli"

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "host, H",
		Usage: "host the session is bound to, e.g. example.com or 127.0.0.1:8080",
	},
	cli.StringFlag{
		Name:  "scheme, s",
		Usage: "scheme for root relative URLs (default: from WEBSESSION_SCHEME or https)",
	},
	cli.StringFlag{
		Name:  "user-agent, A",
		Usage: "desktop, mobile or a literal User-Agent string",
	},
	cli.StringSliceFlag{
		Name:  "header",
		Usage: "extra request header as \"Name: value\", may be repeated",
	},
	cli.StringFlag{
		Name:  "cookie-dir, d",
		Usage: "directory holding <host>.cookie files; cookies are loaded before and saved after the request",
	},
	cli.BoolFlag{
		Name:  "never-expire",
		Usage: "treat every stored cookie as live",
	},
	cli.BoolFlag{
		Name:  "no-cookies",
		Usage: "neither send nor store cookies",
	},
	cli.BoolFlag{
		Name:  "follow, L",
		Usage: "let the transport follow redirects",
	},
	cli.StringFlag{
		Name:  "env-file",
		Value: ".env",
		Usage: "optional dotenv file read before the environment",
	},
	cli.BoolFlag{
		Name:  "verbose",
		Usage: "development logging at debug level on stderr",
	},
}

var outputFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "include, i",
		Usage: "print the status line and response headers before the body",
	},
	cli.BoolFlag{
		Name:  "json",
		Usage: "print the full tool result as JSON",
	},
}

var postFlags = append([]cli.Flag{
	cli.StringSliceFlag{
		Name:  "data, D",
		Usage: "request field as name=value, may be repeated",
	},
	cli.StringFlag{
		Name:  "encoding, e",
		Value: "form",
		Usage: "body encoding: form or payload (JSON)",
	},
}, outputFlags...)

var runFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "keep-going, k",
		Usage: "continue after a failed step",
	},
}
