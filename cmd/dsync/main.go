// Command dsync compares a Dataverse dataset with a source repository.
package main

import "github.com/ErykKul/DataSync/internal/cli"

func main() {
	cli.Execute()
}
