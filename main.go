/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/jalleeeee/profiler/cmd"

func main() {
	cmd.Execute()
}
