package webui

import (
	"embed"
	"io/fs"
)

// content holds the browser UI assets served at the server root.
//
//go:embed static/*
var content embed.FS

func Enabled() bool {
	return true
}

func FS() fs.FS {
	return content
}
