// Package api describes the HAST backend the client talks to: the
// environment presets (base URL and debug default) and the endpoint paths.
package api
