/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/Adnaan29/AODV-Protocol-Simulator/cmd"

func main() {
	cmd.Execute()
}
