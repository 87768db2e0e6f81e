// Package config provides configuration structures and utilities for munscan.
// It defines the scanner station settings (lookup server, camera, frame rate,
// deduplication, notification lifetime) and the lookup server settings
// (listen address, roster, attendance database).
package config
