package main

import "github.com/restalytics/restalytics/cmd"

func main() {
	cmd.Execute()
}
