// Package services implements the driving port interfaces.
// Services contain the bootstrap logic and orchestrate
// calls to driven ports (adapters).
//
// Services never touch the network or spawn processes themselves; every
// side effect goes through a driven port.
package services
