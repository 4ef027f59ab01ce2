// Package pool
// Author: momentics <momentics@gmail.com>
//
// Buffer pooling for connection read loops. Each connection task acquires one
// read buffer for its lifetime and returns it when the connection ends.
package pool
