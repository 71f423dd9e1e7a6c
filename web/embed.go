// Package web bundles the page templates and browser assets.
package web

import "embed"

// Templates holds the HTML page templates
//
//go:embed templates/*.html
var Templates embed.FS

// Static holds the scripts and styles served under /static
//
//go:embed static/*
var Static embed.FS
