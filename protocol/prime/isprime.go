// File: protocol/prime/isprime.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package prime

// IsPrime reports whether n is prime by trial division over every divisor
// from n/2 down to 2. The scan is linear in n; it runs on the connection
// goroutine without yielding.
func IsPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n == 2 {
		return true
	}
	for divisor := n / 2; divisor > 1; divisor-- {
		if n%divisor == 0 {
			return false
		}
	}
	return true
}
