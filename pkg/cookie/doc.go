// Package cookie sets, reads and clears HTTP cookies with shared defaults.
//
// The manager stores plain values. Everything this service keeps in cookies is
// an opaque random identifier whose meaning lives server side, so values are
// neither signed nor encrypted.
package cookie
