package mdblog

import "embed"

// EmbeddedAssets contains static assets shipped with the binary: the default
// stylesheet served at /public/style.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
