package main

import "github.com/mselser95/predict-account/cmd"

func main() {
	cmd.Execute()
}
