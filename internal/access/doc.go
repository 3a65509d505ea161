// Package access decides which devices a caller may see and control.
//
// A household has one owner and any number of members. The owner is
// always OWNER regardless of membership rows; members carry a stored
// role plus optional area and label restrictions; everyone else is
// NONE and sees nothing.
//
// Device filtering itself is pure and performs no I/O, so every
// role/area/label combination is unit-testable without a database or
// a hub.
package access
