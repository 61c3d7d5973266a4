// Command statsmd looks up test recommendations, validates catalog
// documents and exports the study guide.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
