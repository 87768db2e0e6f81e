// Package server is the lookup server scanner stations talk to. It serves
// delegate cards from the roster and records check-ins in the attendance
// database.
//
// Routes:
//
//	GET  /scan/{id}            delegate card page, checks in on first scan
//	POST /validate/{id}        check in, then redirect to the card
//	POST /manual_scan          form field delegate_id, redirect to the card
//	GET  /dashboard            attendance statistics
//	GET  /attendance/summary   attendance summary as JSON
//	GET  /healthz              liveness probe
package server
