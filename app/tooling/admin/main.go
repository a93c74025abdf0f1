// This program performs administrative tasks for the archival node.
package main

import "github.com/vedhavyas/subspace/app/tooling/admin/commands"

func main() {
	commands.Execute()
}
