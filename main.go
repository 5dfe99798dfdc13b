package main

import (
	"github.com/DragonRuins/hubdoc/cmd"
)

func main() {
	cmd.Execute()
}
