// Package config loads websession configuration from the environment.
//
// An optional .env file is read first (github.com/joho/godotenv), then
// github.com/kelseyhightower/envconfig fills Config from variables such as
// WEBSESSION_SCHEME, COOKIE_DIR, HTTP_TIMEOUT and LOG_LEVEL. Each section
// converts into the configuration type of the package it drives.
package config
