//go:build neatrelease

package neat

const verifyInvariants = false
