//go:build !neatrelease

package neat

// verifyInvariants enables structural checks after every mutation and crossover.
// Build with -tags neatrelease to turn them off.
const verifyInvariants = true
