// Package main provides the entry point for the munscan CLI.
//
// munscan checks delegates in at a conference by scanning the QR code on
// their badge. A scanner station decodes camera frames, looks the delegate
// up on the lookup server and shows the delegate card with a short
// notification.
//
// Usage:
//
//	munscan serve --roster delegates.json
//	munscan scan --server http://localhost:8080
//	munscan report --markdown
//
// See --help for all available options.
package main

// main is the entry point for munscan.
func main() {
	Execute()
}
