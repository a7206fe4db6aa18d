// Public domain.

package main

import "github.com/soniakeys/rotmap/internal/rmprog"

func main() {
	rmprog.Main()
}
