// Package client provides the `ringlog` command-line client.
//
// The CLI talks to the ringlog HTTP endpoint to operate the circular log
// and the flash device underneath it from a terminal. It is primarily
// intended for developers and operators.
//
// Installation
//
//	go install github.com/rzbill/ringlog/cmd/ringlog@latest
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it is
// read from the RINGLOG_HTTP environment variable (default
// http://127.0.0.1:8080).
//
// Usage
//
//	ringlog log append --record 'hello'
//	ringlog log append --field telemetry --field 42 --field 20.5
//	ringlog log position
//	ringlog log set-position --addr 0x1000
//	ringlog log reset
//	ringlog log recover
//
//	# Pause the producer, inspect the device, resume
//	ringlog log pause
//	ringlog device read --addr 0 --len 256
//	ringlog device dump -o flash.hex
//	ringlog log resume
//
//	ringlog device info
//	ringlog device erase --addr 0x2000
//	ringlog device erase-range --start 0 --end 0x3fff
//	ringlog device erase-all --confirm
//
//	ringlog status
//
// Notes
//
//   - append with repeated --field flags frames the fields as one
//     fixed-width record page; --record appends the bytes unframed.
//   - dump pauses the producer on the server for the duration of the
//     walk, then restores the gate to its previous state.
//   - erase-all refuses to run without --confirm.
package client
