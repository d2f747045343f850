package main

import "github.com/MeKo-Tech/topollock/internal/cmd"

func main() {
	cmd.Execute()
}
