// Package discovery locates the companion API on the local /24 network.
//
// LocalSubnet picks the network prefix from the host's interfaces and a
// Sweeper probes every address in that prefix concurrently. The first host
// that passes the probe wins; the remaining probes are cancelled.
package discovery
