package dom

import _ "embed"

// InstrumentScript must run in the page before any page script. It wraps
// the event-registration entry point so the capture script can later ask
// which event types were ever bound to an element.
//
//go:embed instrument.js
var InstrumentScript string

// CaptureScript serializes the rendered element tree to the JSON shape
// Decode expects. It is evaluated in the page context and returns by value;
// no object references cross the boundary.
//
//go:embed capture.js
var CaptureScript string
