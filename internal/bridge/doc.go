// Package bridge executes control commands against a household's hub
// on behalf of three front ends: the direct JSON API, Alexa Smart Home
// directives, and Google Smart Home fulfillment.
//
// All three run the same core sequence: resolve the caller's grant,
// check the target entity against the caller's visible device set,
// derive the service domain, and invoke the hub. The protocol adapters
// only translate envelopes; a device invisible to a direct API caller
// is equally invisible to Alexa and Google.
//
// Voice requests carry no per-request user. They act as a fixed,
// configured household and see exactly the labeled devices of that
// household.
package bridge
