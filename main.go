package main

import "github.com/nyota-loans/ms-go-payments/cmd"

func main() {
	cmd.Execute()
}
