// Package interconnect finds how the device's output pins are wired back to
// its input pins on the board.
//
// Under EXTEST every output is held low, then each candidate output is
// driven through 0→1→0 while the inputs are captured. An input that follows
// the driver is on the same net. Nets are merged with a union-find and can be
// exported as JSON.
package interconnect
