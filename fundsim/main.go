// Command fundsim simulates how the ownership of a venture fund and its
// startups evolves day by day.
package main

import "github.com/sarchlab/fundsim/fundsim/cmd"

func main() {
	cmd.Execute()
}
