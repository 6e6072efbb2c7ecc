//go:build windows

package config

const defaultDiskPath = `C:\`
