// Package mqtt provides the outbound MQTT connection for command
// events.
//
// Dinodia Core is a publisher only: every executed, denied, or failed
// control command is mirrored onto the event bus for external
// consumers. The client also maintains a retained online/offline
// status topic with a Last Will so consumers can detect an unclean
// shutdown.
//
// The integration is optional. When disabled in config the bridge
// simply runs without an event publisher.
package mqtt
