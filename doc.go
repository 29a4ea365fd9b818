/*
Package spisim provides a cycle-accurate simulation kernel for small
synchronous serial circuits.

A circuit is a set of parts connected by named wires. Each part contributes
one or more Components: per-tick state transition functions that read the
wire snapshot committed at the end of the previous tick and write the next
one. All writes become visible at once when the tick completes, so no
component can ever observe another's same-tick update.

Every wire has exactly one driver. The spisim/link package builds on this
kernel to model a complete SPI mode-0 exchange between a bus controller and
a fixed-response peripheral.
*/
package spisim
