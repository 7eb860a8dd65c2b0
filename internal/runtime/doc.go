// Package runtime composes the daemon's long-lived pieces: the flash image
// device, the ring engine over it, and the status collector. Servers and
// services receive a *Runtime and share the one device instance it owns.
package runtime
