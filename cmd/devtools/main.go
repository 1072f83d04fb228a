// Command scenekit-devtools inspects save slots and asset manifests.
package main

import "os"

func main() {
	if err := execute(newRootCmd()); err != nil {
		os.Exit(1)
	}
}
