// SPDX-License-Identifier: MPL-2.0

package main

import (
	cmd "zenodo-deposit-cli/cmd/zenododeposit"
)

func main() {
	cmd.Execute()
}
