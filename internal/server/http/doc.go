// Package httpserver exposes the ring engine and the raw device over a
// small JSON HTTP API. It plays the dispatcher role: each route maps one
// command onto one engine or device operation, and the full-device dump
// brackets itself with the engine's pause gate so the periodic producer
// does not advance the ring mid-walk.
//
// Log routes (engine operations):
//
//	POST /v1/log/append    append a record (raw or field-framed)
//	GET  /v1/log/position  current cursor
//	POST /v1/log/position  set cursor (block-aligned down)
//	POST /v1/log/reset     cursor to zero
//	POST /v1/log/pause     set the pause gate
//	POST /v1/log/resume    clear the pause gate
//	GET  /v1/log/paused    gate state
//	POST /v1/log/recover   rebuild the cursor by scanning the device
//
// Device routes (raw access, sharing the engine's device mutex):
//
//	GET  /v1/device/info         geometry
//	GET  /v1/device/read         bounded range read, hex
//	GET  /v1/device/dump         full hex dump, pause-bracketed
//	POST /v1/device/erase        erase the block containing addr
//	POST /v1/device/erase-range  erase covering blocks
//	POST /v1/device/erase-all    erase the chip
//
// Plus GET /v1/healthz and GET /v1/status.
package httpserver
