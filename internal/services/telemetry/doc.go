// Package telemetry implements the periodic producer task: it samples a
// source at a fixed interval, frames each sample as a one-page record, and
// appends it to the ring engine. Record content is opaque to the engine;
// cadence and framing live entirely here.
package telemetry
